package orbview

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// MaxSceneObjects is the shader-side capacity of the per-object position
// and color arrays.
const MaxSceneObjects = 64

// ObjectID identifies one scene entry independently of its shifting
// position in the sequence.
type ObjectID string

func makeObjectID() ObjectID {
	return ObjectID(uuid.NewString())
}

// groundIndex is the reserved object index that tells the shader it is
// drawing the ground plane rather than an entry of the object sequence.
const groundIndex = -1

var (
	clearColor    = mgl32.Vec4{0, 0.4, 0.9, 1}
	fallbackColor = mgl32.Vec4{0.4, 0.7, 0.2, 1}
	groundOffset  = mgl32.Vec3{0, -1, 0}
)

// Scene owns the ordered collection of drawable objects together with
// their colors and positions, plus the distinguished ground object kept
// outside the sequence. The three per-object slices stay index-aligned at
// all times. Rendering collaborators are bound separately; RenderFrame is
// a deliberate no-op until all of them are present, so setup order does
// not matter.
type Scene struct {
	objects   []*SceneObject
	colors    []mgl32.Vec4
	positions []mgl32.Vec3
	ids       []ObjectID

	ground *SceneObject

	renderer  Renderer
	bridge    ShaderBridge
	technique Technique
	camera    *Camera
	shading   *ShadingState
}

func NewScene() *Scene {
	return &Scene{}
}

// BindRenderer attaches the device the scene draws through. Buffer
// creation also goes through it, so it must be bound before Insert.
func (s *Scene) BindRenderer(r Renderer) { s.renderer = r }

// BindShader attaches the shader bridge and the technique it drives.
func (s *Scene) BindShader(bridge ShaderBridge, tech Technique) {
	s.bridge = bridge
	s.technique = tech
}

// BindCamera attaches the camera whose matrices every frame uses.
func (s *Scene) BindCamera(cam *Camera) { s.camera = cam }

// BindShading attaches the shading parameter state.
func (s *Scene) BindShading(sh *ShadingState) { s.shading = sh }

// Len reports the number of objects in the sequence (the ground object
// does not count).
func (s *Scene) Len() int { return len(s.objects) }

// Insert uploads the mesh and appends it to the sequence with the given
// color, at the origin. Fails without touching the scene if the mesh is
// invalid, the renderer is unbound, the scene is full, or buffer creation
// fails.
func (s *Scene) Insert(mesh *Mesh, color mgl32.Vec4) (ObjectID, error) {
	if s.renderer == nil {
		return "", fmt.Errorf("scene: no renderer bound")
	}
	if len(s.objects) >= MaxSceneObjects {
		return "", fmt.Errorf("scene: object capacity %d reached", MaxSceneObjects)
	}
	if err := mesh.Validate(); err != nil {
		return "", fmt.Errorf("scene: rejecting mesh: %w", err)
	}

	obj, err := NewSceneObject(s.renderer, mesh)
	if err != nil {
		return "", err
	}
	return s.append(obj, color), nil
}

// InsertSphere generates a sphere mesh and inserts it in one step.
func (s *Scene) InsertSphere(meridians, parallels int, radius float32, color mgl32.Vec4) (ObjectID, error) {
	mesh, err := BuildSphere(meridians, parallels, radius, color)
	if err != nil {
		return "", err
	}
	return s.Insert(mesh, color)
}

// InsertCopy appends a copy of the object at position i. The copy shares
// GPU buffers with the original, gets the fallback color, and starts at
// the origin.
func (s *Scene) InsertCopy(i int) (ObjectID, error) {
	if i < 0 || i >= len(s.objects) {
		return "", fmt.Errorf("scene: copy source %d out of range", i)
	}
	if len(s.objects) >= MaxSceneObjects {
		return "", fmt.Errorf("scene: object capacity %d reached", MaxSceneObjects)
	}
	return s.append(s.objects[i].Clone(), fallbackColor), nil
}

func (s *Scene) append(obj *SceneObject, color mgl32.Vec4) ObjectID {
	id := makeObjectID()
	s.objects = append(s.objects, obj)
	s.colors = append(s.colors, color)
	s.positions = append(s.positions, mgl32.Vec3{})
	s.ids = append(s.ids, id)
	return id
}

// Remove erases the object and its color and position at position i,
// shifting later entries down. The object's buffer reference is released.
func (s *Scene) Remove(i int) error {
	if i < 0 || i >= len(s.objects) {
		return fmt.Errorf("scene: remove index %d out of range", i)
	}
	s.objects[i].Release()
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	s.colors = append(s.colors[:i], s.colors[i+1:]...)
	s.positions = append(s.positions[:i], s.positions[i+1:]...)
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	return nil
}

// RemoveAll empties the sequence, releasing every object.
func (s *Scene) RemoveAll() {
	for _, obj := range s.objects {
		obj.Release()
	}
	s.objects = nil
	s.colors = nil
	s.positions = nil
	s.ids = nil
}

// IndexOf returns the current position of the object with the given id,
// or -1 if it is no longer in the scene.
func (s *Scene) IndexOf(id ObjectID) int {
	for i, have := range s.ids {
		if have == id {
			return i
		}
	}
	return -1
}

// RemoveByID removes the object with the given id wherever it currently
// sits in the sequence.
func (s *Scene) RemoveByID(id ObjectID) error {
	i := s.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("scene: no object %s", id)
	}
	return s.Remove(i)
}

// UpdateColor changes the color of the object at position i. Out-of-range
// indices are ignored.
func (s *Scene) UpdateColor(i int, color mgl32.Vec4) {
	if i >= 0 && i < len(s.colors) {
		s.colors[i] = color
	}
}

// Color returns the color at position i.
func (s *Scene) Color(i int) mgl32.Vec4 { return s.colors[i] }

// SetPosition moves the object at position i; its world matrix becomes a
// translation to that point. Out-of-range indices are ignored.
func (s *Scene) SetPosition(i int, p mgl32.Vec3) {
	if i >= 0 && i < len(s.positions) {
		s.positions[i] = p
	}
}

// Position returns the position of the object at position i.
func (s *Scene) Position(i int) mgl32.Vec3 { return s.positions[i] }

// SetGround installs the mesh as the distinguished ground object,
// replacing and releasing any previous one.
func (s *Scene) SetGround(mesh *Mesh) error {
	if s.renderer == nil {
		return fmt.Errorf("scene: no renderer bound")
	}
	obj, err := NewSceneObject(s.renderer, mesh)
	if err != nil {
		return err
	}
	if s.ground != nil {
		s.ground.Release()
	}
	s.ground = obj
	return nil
}

// SetGroundRect generates the ground rectangle and installs it.
func (s *Scene) SetGroundRect(length, width float32, planeNormal, lengthDir mgl32.Vec3) error {
	return s.SetGround(BuildRectangle(length, width, planeNormal, lengthDir))
}

// Close releases every GPU resource the scene owns.
func (s *Scene) Close() {
	s.RemoveAll()
	if s.ground != nil {
		s.ground.Release()
		s.ground = nil
	}
}

// RenderFrame draws one frame. The order is fixed: clear targets, push
// the global shading/camera/position/color state, draw each object in
// insertion order with its world matrix and sequence index, draw the
// ground with the reserved index and its fixed offset, present. When any
// collaborator is still unbound the frame is skipped silently to tolerate
// partial setup.
func (s *Scene) RenderFrame() {
	if s.renderer == nil || s.bridge == nil || s.technique == nil ||
		s.camera == nil || s.shading == nil {
		return
	}

	s.renderer.Clear(clearColor)
	s.renderer.ClearDepth()

	s.shading.Push(s.bridge, len(s.colors))

	s.bridge.SetViewMatrix(s.camera.GetView())
	s.bridge.SetProjectionMatrix(s.camera.GetProjection())
	s.bridge.SetEyePosition(s.camera.GetEyePosition())
	s.bridge.SetObjectPositions(s.positionArray(), len(s.positions))
	s.bridge.SetObjectColors(s.colors, len(s.colors))

	for i, obj := range s.objects {
		s.bridge.SetObjectIndex(i)
		p := s.positions[i]
		s.bridge.SetWorldMatrix(mgl32.Translate3D(p[0], p[1], p[2]))
		obj.Draw(s.renderer, s.technique)
	}

	if s.ground != nil {
		s.bridge.SetObjectIndex(groundIndex)
		s.bridge.SetWorldMatrix(mgl32.Translate3D(groundOffset[0], groundOffset[1], groundOffset[2]))
		s.ground.Draw(s.renderer, s.technique)
	}

	s.renderer.Present()
}

func (s *Scene) positionArray() []mgl32.Vec4 {
	out := make([]mgl32.Vec4, len(s.positions))
	for i, p := range s.positions {
		out[i] = p.Vec4(1)
	}
	return out
}
