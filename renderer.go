package orbview

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferHandle is a GPU buffer owned by whoever created it through a
// Renderer. Destroy releases the underlying GPU memory; callers must not
// use the handle afterwards.
type BufferHandle interface {
	Destroy()
}

// TextureHandle is an opaque GPU texture reference.
type TextureHandle interface {
	Destroy()
}

// Renderer is the device-side collaborator the scene draws through. A
// frame runs Clear -> ClearDepth -> (BindBuffers/DrawIndexed)* -> Present;
// buffer creation may happen at any time outside a frame.
type Renderer interface {
	CreateVertexBuffer(data []byte) (BufferHandle, error)
	CreateIndexBuffer(data []byte) (BufferHandle, error)

	BindBuffers(vertex, index BufferHandle, stride uint32)
	DrawIndexed(indexCount uint32)

	Clear(color mgl32.Vec4)
	ClearDepth()
	Present()
}

// ShaderBridge pushes per-frame and per-object values into the active
// shader technique. All setters are fire-and-forget.
type ShaderBridge interface {
	SetWorldMatrix(world mgl32.Mat4)
	SetViewMatrix(view mgl32.Mat4)
	SetProjectionMatrix(projection mgl32.Mat4)
	SetEyePosition(eye mgl32.Vec4)
	SetObjectPositions(positions []mgl32.Vec4, count int)
	SetObjectColors(colors []mgl32.Vec4, count int)
	SetObjectIndex(index int)
	SetShadingScalars(gamma, brightness, reflectance, diffuseStrength, skyBrightness float32, channel, count int)
	BindFloorTexture(tex TextureHandle)
}

// Technique is a fixed multi-pass shader program. A SceneObject applies
// every pass in order, issuing one indexed draw per pass.
type Technique interface {
	PassCount() int
	ApplyPass(pass int)
}

// DeviceError reports a fatal graphics-device failure. Construction of the
// dependent component aborts; there is no retry.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("device: %s failed", e.Op)
	}
	return fmt.Sprintf("device: %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ResourceCreationError reports a failed GPU resource allocation for one
// object. The object must not be inserted into the scene.
type ResourceCreationError struct {
	Resource string
	Err      error
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("resource: creating %s failed: %v", e.Resource, e.Err)
}

func (e *ResourceCreationError) Unwrap() error { return e.Err }
