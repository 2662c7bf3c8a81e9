package wgpurender

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/orbview/orbview"
)

// Byte offsets inside the Globals uniform buffer. They mirror the WGSL
// Globals struct field by field; positions and colors are fixed arrays
// sized for the scene capacity.
const (
	globalsViewOffset      = 0
	globalsProjOffset      = 64
	globalsEyeOffset       = 128
	globalsPositionsOffset = 144
	globalsColorsOffset    = globalsPositionsOffset + 16*orbview.MaxSceneObjects
	globalsScalarsOffset   = globalsColorsOffset + 16*orbview.MaxSceneObjects
	globalsMiscOffset      = globalsScalarsOffset + 16
	globalsSize            = globalsMiscOffset + 16
)

// Per-object uniform slots. Each draw gets its own 256-byte slot in one
// buffer, addressed through a dynamic offset, so all slots of a frame can
// be written up front without racing the GPU. One extra slot covers the
// ground object.
const (
	objectSlotStride = 256 // minUniformBufferOffsetAlignment
	objectSlotCount  = orbview.MaxSceneObjects + 1
	objectDataSize   = 80 // mat4 world + i32 index, padded to 16
)

// ShaderState implements the shader bridge on two uniform buffers: one
// with the per-frame globals and one with per-draw object slots. Setters
// write through to the GPU immediately; queue writes are ordered before
// the frame's command buffer executes.
type ShaderState struct {
	dev *Device

	globals *wgpu.Buffer
	objects *wgpu.Buffer
	sampler *wgpu.Sampler

	// Floor texture bound into group 0; a 1x1 white fallback until the
	// demo provides a real one.
	floorView     *wgpu.TextureView
	fallback      *Texture
	texGeneration int

	slot       int
	slotOffset uint32
}

func NewShaderState(dev *Device) (*ShaderState, error) {
	s := &ShaderState{dev: dev}

	var err error
	s.globals, err = dev.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Globals",
		Size:  globalsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, &orbview.DeviceError{Op: "create globals buffer", Err: err}
	}
	s.objects, err = dev.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Object Slots",
		Size:  objectSlotStride * objectSlotCount,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		s.globals.Release()
		return nil, &orbview.DeviceError{Op: "create object buffer", Err: err}
	}

	s.sampler, err = dev.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   1,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	if err != nil {
		s.objects.Release()
		s.globals.Release()
		return nil, &orbview.DeviceError{Op: "create sampler", Err: err}
	}

	s.fallback, err = NewSolidTexture(dev, [4]uint8{255, 255, 255, 255})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.floorView = s.fallback.view
	return s, nil
}

// beginFrame rewinds the object slot cursor; the renderer calls it when a
// new frame starts.
func (s *ShaderState) beginFrame() {
	s.slot = -1
	s.slotOffset = 0
}

func (s *ShaderState) writeGlobals(offset uint64, data []byte) {
	s.dev.queue.WriteBuffer(s.globals, offset, data)
}

func matrixBytes(m mgl32.Mat4) []byte {
	out := make([]byte, 0, 64)
	for _, f := range m {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

func vec4Bytes(vs ...mgl32.Vec4) []byte {
	out := make([]byte, 0, 16*len(vs))
	for _, v := range vs {
		for _, f := range v {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

func (s *ShaderState) SetViewMatrix(view mgl32.Mat4) {
	s.writeGlobals(globalsViewOffset, matrixBytes(view))
}

func (s *ShaderState) SetProjectionMatrix(projection mgl32.Mat4) {
	s.writeGlobals(globalsProjOffset, matrixBytes(projection))
}

func (s *ShaderState) SetEyePosition(eye mgl32.Vec4) {
	s.writeGlobals(globalsEyeOffset, vec4Bytes(eye))
}

func (s *ShaderState) SetObjectPositions(positions []mgl32.Vec4, count int) {
	if count > len(positions) {
		count = len(positions)
	}
	if count > orbview.MaxSceneObjects {
		count = orbview.MaxSceneObjects
	}
	if count == 0 {
		return
	}
	s.writeGlobals(globalsPositionsOffset, vec4Bytes(positions[:count]...))
}

func (s *ShaderState) SetObjectColors(colors []mgl32.Vec4, count int) {
	if count > len(colors) {
		count = len(colors)
	}
	if count > orbview.MaxSceneObjects {
		count = orbview.MaxSceneObjects
	}
	if count == 0 {
		return
	}
	s.writeGlobals(globalsColorsOffset, vec4Bytes(colors[:count]...))
}

func (s *ShaderState) SetShadingScalars(gamma, brightness, reflectance, diffuseStrength, skyBrightness float32, channel, count int) {
	s.writeGlobals(globalsScalarsOffset, vec4Bytes(
		mgl32.Vec4{gamma, brightness, reflectance, diffuseStrength},
		mgl32.Vec4{skyBrightness, float32(channel), float32(count), 0},
	))
}

// SetObjectIndex advances to the next per-draw slot and stamps the slot's
// sequence index; the ground object passes its reserved negative index.
func (s *ShaderState) SetObjectIndex(index int) {
	s.slot++
	if s.slot >= objectSlotCount {
		s.slot = objectSlotCount - 1
	}
	s.slotOffset = uint32(s.slot) * objectSlotStride

	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], uint32(int32(index)))
	s.dev.queue.WriteBuffer(s.objects, uint64(s.slotOffset)+64, raw[:])
}

// SetWorldMatrix writes the world transform into the current slot.
func (s *ShaderState) SetWorldMatrix(world mgl32.Mat4) {
	if s.slot < 0 {
		s.slot = 0
		s.slotOffset = 0
	}
	s.dev.queue.WriteBuffer(s.objects, uint64(s.slotOffset), matrixBytes(world))
}

// BindFloorTexture swaps the texture sampled on the ground object. The
// technique rebuilds its bind group on the next pass.
func (s *ShaderState) BindFloorTexture(tex orbview.TextureHandle) {
	t, ok := tex.(*Texture)
	if !ok || t.view == nil {
		return
	}
	s.floorView = t.view
	s.texGeneration++
}

// dynamicOffset returns the byte offset of the slot the next draw uses.
func (s *ShaderState) dynamicOffset() uint32 {
	return s.slotOffset
}

// Close releases the GPU resources the state owns. The floor texture
// belongs to whoever bound it.
func (s *ShaderState) Close() {
	if s.fallback != nil {
		s.fallback.Destroy()
		s.fallback = nil
	}
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
	if s.objects != nil {
		s.objects.Release()
		s.objects = nil
	}
	if s.globals != nil {
		s.globals.Release()
		s.globals = nil
	}
}
