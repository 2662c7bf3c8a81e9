package orbview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The doubles below record every renderer/bridge/technique call into one
// shared trace, so tests can assert the exact frame sequence.

type frameTrace struct {
	events []string
}

func (ft *frameTrace) add(format string, args ...any) {
	ft.events = append(ft.events, fmt.Sprintf(format, args...))
}

type stubBuffer struct {
	kind      string
	destroyed int
}

func (b *stubBuffer) Destroy() { b.destroyed++ }

type stubRenderer struct {
	trace   *frameTrace
	buffers []*stubBuffer

	failVertex bool
	failIndex  bool
}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{trace: &frameTrace{}}
}

func (r *stubRenderer) CreateVertexBuffer(data []byte) (BufferHandle, error) {
	if r.failVertex {
		return nil, errors.New("vertex allocation refused")
	}
	b := &stubBuffer{kind: "vertex"}
	r.buffers = append(r.buffers, b)
	return b, nil
}

func (r *stubRenderer) CreateIndexBuffer(data []byte) (BufferHandle, error) {
	if r.failIndex {
		return nil, errors.New("index allocation refused")
	}
	b := &stubBuffer{kind: "index"}
	r.buffers = append(r.buffers, b)
	return b, nil
}

func (r *stubRenderer) BindBuffers(vertex, index BufferHandle, stride uint32) {
	r.trace.add("bind stride=%d", stride)
}

func (r *stubRenderer) DrawIndexed(indexCount uint32) { r.trace.add("draw %d", indexCount) }
func (r *stubRenderer) Clear(color mgl32.Vec4)        { r.trace.add("clear") }
func (r *stubRenderer) ClearDepth()                   { r.trace.add("clear-depth") }
func (r *stubRenderer) Present()                      { r.trace.add("present") }

// destroyedCount sums Destroy calls across every buffer handed out.
func (r *stubRenderer) destroyedCount() int {
	n := 0
	for _, b := range r.buffers {
		n += b.destroyed
	}
	return n
}

type stubBridge struct {
	trace *frameTrace
}

func (b *stubBridge) SetWorldMatrix(mgl32.Mat4)      { b.trace.add("world") }
func (b *stubBridge) SetViewMatrix(mgl32.Mat4)       { b.trace.add("view") }
func (b *stubBridge) SetProjectionMatrix(mgl32.Mat4) { b.trace.add("projection") }
func (b *stubBridge) SetEyePosition(mgl32.Vec4)      { b.trace.add("eye") }

func (b *stubBridge) SetObjectPositions(positions []mgl32.Vec4, count int) {
	b.trace.add("positions %d", count)
}

func (b *stubBridge) SetObjectColors(colors []mgl32.Vec4, count int) {
	b.trace.add("colors %d", count)
}

func (b *stubBridge) SetObjectIndex(index int) { b.trace.add("object %d", index) }

func (b *stubBridge) SetShadingScalars(gamma, brightness, reflectance, diffuseStrength, skyBrightness float32, channel, count int) {
	b.trace.add("shading channel=%d count=%d", channel, count)
}

func (b *stubBridge) BindFloorTexture(TextureHandle) { b.trace.add("floor-texture") }

type stubTechnique struct {
	trace  *frameTrace
	passes int
}

func (tq *stubTechnique) PassCount() int { return tq.passes }

func (tq *stubTechnique) ApplyPass(pass int) { tq.trace.add("pass %d", pass) }

// boundScene wires a scene to a full set of doubles sharing one trace.
func boundScene(passes int) (*Scene, *stubRenderer, *frameTrace) {
	r := newStubRenderer()
	s := NewScene()
	s.BindRenderer(r)
	s.BindShader(&stubBridge{trace: r.trace}, &stubTechnique{trace: r.trace, passes: passes})
	s.BindCamera(NewCamera())
	s.BindShading(NewShadingState())
	return s, r, r.trace
}

func TestSceneInsertRemoveKeepsSlicesInLockstep(t *testing.T) {
	s, r, _ := boundScene(1)

	red := mgl32.Vec4{1, 0, 0, 1}
	green := mgl32.Vec4{0, 1, 0, 1}
	blue := mgl32.Vec4{0, 0, 1, 1}

	idRed, err := s.InsertSphere(8, 6, 1, red)
	require.NoError(t, err)
	idGreen, err := s.InsertSphere(8, 6, 1, green)
	require.NoError(t, err)
	idBlue, err := s.InsertSphere(8, 6, 1, blue)
	require.NoError(t, err)

	s.SetPosition(0, mgl32.Vec3{1, 0, 0})
	s.SetPosition(1, mgl32.Vec3{2, 0, 0})
	s.SetPosition(2, mgl32.Vec3{3, 0, 0})

	require.NoError(t, s.Remove(1))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, red, s.Color(0))
	assert.Equal(t, blue, s.Color(1))
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, s.Position(0))
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, s.Position(1))

	assert.Equal(t, 0, s.IndexOf(idRed))
	assert.Equal(t, -1, s.IndexOf(idGreen))
	assert.Equal(t, 1, s.IndexOf(idBlue))

	// The removed sphere's two buffers were destroyed, nothing else.
	assert.Equal(t, 2, r.destroyedCount())

	assert.Error(t, s.Remove(2))
	assert.Error(t, s.Remove(-1))
}

func TestSceneRemoveByID(t *testing.T) {
	s, _, _ := boundScene(1)

	first, err := s.InsertSphere(4, 3, 1, mgl32.Vec4{})
	require.NoError(t, err)
	second, err := s.InsertSphere(4, 3, 1, mgl32.Vec4{})
	require.NoError(t, err)

	require.NoError(t, s.RemoveByID(first))
	assert.Equal(t, 0, s.IndexOf(second))
	assert.Error(t, s.RemoveByID(first))
}

func TestSceneInsertRequiresRenderer(t *testing.T) {
	s := NewScene()
	_, err := s.InsertSphere(8, 6, 1, mgl32.Vec4{})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestSceneInsertRejectsInvalidMesh(t *testing.T) {
	s, r, _ := boundScene(1)

	_, err := s.Insert(&Mesh{Vertices: make([]Vertex, 3), Indices: []uint32{0, 1}}, mgl32.Vec4{})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, r.buffers)
}

func TestSceneInsertSurfacesAllocationFailure(t *testing.T) {
	s, r, _ := boundScene(1)
	r.failIndex = true

	_, err := s.InsertSphere(8, 6, 1, mgl32.Vec4{})
	var rcErr *ResourceCreationError
	require.ErrorAs(t, err, &rcErr)
	assert.Equal(t, 0, s.Len())

	// The vertex buffer that did get created was rolled back.
	assert.Equal(t, 1, r.destroyedCount())
}

func TestSceneCapacity(t *testing.T) {
	s, _, _ := boundScene(1)

	_, err := s.InsertSphere(4, 3, 1, mgl32.Vec4{})
	require.NoError(t, err)
	for i := 1; i < MaxSceneObjects; i++ {
		_, err := s.InsertCopy(0)
		require.NoError(t, err)
	}

	_, err = s.InsertSphere(4, 3, 1, mgl32.Vec4{})
	assert.Error(t, err)
	_, err = s.InsertCopy(0)
	assert.Error(t, err)
	assert.Equal(t, MaxSceneObjects, s.Len())
}

func TestSceneInsertCopySharesBuffers(t *testing.T) {
	s, r, _ := boundScene(1)

	_, err := s.InsertSphere(8, 6, 1, mgl32.Vec4{1, 0, 0, 1})
	require.NoError(t, err)
	_, err = s.InsertCopy(0)
	require.NoError(t, err)

	assert.Equal(t, fallbackColor, s.Color(1))
	assert.Equal(t, mgl32.Vec3{}, s.Position(1))
	assert.Equal(t, 2, s.objects[0].refCount())
	assert.Same(t, s.objects[0].buffers, s.objects[1].buffers)

	// Only two buffers exist for both objects; they survive the removal
	// of the original and die with the copy.
	assert.Len(t, r.buffers, 2)
	require.NoError(t, s.Remove(0))
	assert.Equal(t, 0, r.destroyedCount())
	require.NoError(t, s.Remove(0))
	assert.Equal(t, 2, r.destroyedCount())

	_, err = s.InsertCopy(0)
	assert.Error(t, err, "copy source must be range-checked")
}

func TestSceneUpdateColor(t *testing.T) {
	s, _, _ := boundScene(1)

	_, err := s.InsertSphere(4, 3, 1, mgl32.Vec4{1, 0, 0, 1})
	require.NoError(t, err)
	_, err = s.InsertSphere(4, 3, 1, mgl32.Vec4{0, 1, 0, 1})
	require.NoError(t, err)

	yellow := mgl32.Vec4{1, 1, 0, 1}
	s.UpdateColor(0, yellow)
	assert.Equal(t, yellow, s.Color(0))
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, s.Color(1))

	// Out-of-range updates are silently ignored.
	s.UpdateColor(-1, yellow)
	s.UpdateColor(2, yellow)
	s.UpdateColor(99, yellow)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, s.Color(1))
}

func TestSceneRenderFrameOrdering(t *testing.T) {
	s, _, trace := boundScene(1)

	_, err := s.InsertSphere(3, 2, 1, mgl32.Vec4{1, 0, 0, 1}) // 18 indices
	require.NoError(t, err)
	_, err = s.InsertCopy(0)
	require.NoError(t, err)
	require.NoError(t, s.SetGroundRect(20, 20, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}))

	s.RenderFrame()

	want := []string{
		"clear",
		"clear-depth",
		"shading channel=0 count=2",
		"view",
		"projection",
		"eye",
		"positions 2",
		"colors 2",
		"object 0",
		"world",
		"bind stride=40",
		"pass 0",
		"draw 18",
		"object 1",
		"world",
		"bind stride=40",
		"pass 0",
		"draw 18",
		"object -1",
		"world",
		"bind stride=40",
		"pass 0",
		"draw 6",
		"present",
	}
	assert.Equal(t, want, trace.events)
}

func TestSceneRenderFrameMultiPass(t *testing.T) {
	s, _, trace := boundScene(2)

	_, err := s.InsertSphere(3, 2, 1, mgl32.Vec4{})
	require.NoError(t, err)

	s.RenderFrame()

	assert.Contains(t, trace.events, "pass 0")
	assert.Contains(t, trace.events, "pass 1")

	draws := 0
	for _, e := range trace.events {
		if e == "draw 18" {
			draws++
		}
	}
	assert.Equal(t, 2, draws, "one indexed draw per pass")
}

func TestSceneRenderFrameSkipsWhenPartiallyBound(t *testing.T) {
	unbind := map[string]func(*Scene){
		"renderer":  func(s *Scene) { s.renderer = nil },
		"bridge":    func(s *Scene) { s.bridge = nil },
		"technique": func(s *Scene) { s.technique = nil },
		"camera":    func(s *Scene) { s.camera = nil },
		"shading":   func(s *Scene) { s.shading = nil },
	}

	for name, drop := range unbind {
		s, _, trace := boundScene(1)
		_, err := s.InsertSphere(3, 2, 1, mgl32.Vec4{})
		require.NoError(t, err)

		drop(s)
		s.RenderFrame()
		assert.Empty(t, trace.events, "frame must be skipped without a %s", name)
	}
}

func TestSceneGroundReplacement(t *testing.T) {
	s, r, _ := boundScene(1)

	require.NoError(t, s.SetGroundRect(10, 10, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}))
	require.NoError(t, s.SetGroundRect(20, 20, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}))

	// The first ground's pair was released when the second replaced it.
	assert.Equal(t, 2, r.destroyedCount())
}

func TestSceneClose(t *testing.T) {
	s, r, _ := boundScene(1)

	_, err := s.InsertSphere(4, 3, 1, mgl32.Vec4{})
	require.NoError(t, err)
	_, err = s.InsertCopy(0)
	require.NoError(t, err)
	require.NoError(t, s.SetGroundRect(10, 10, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}))

	s.Close()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 4, r.destroyedCount(), "sphere pair plus ground pair")

	// Closing twice is harmless.
	s.Close()
	assert.Equal(t, 4, r.destroyedCount())
}
