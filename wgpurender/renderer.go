package wgpurender

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/orbview/orbview"
)

// Buffer wraps one GPU buffer behind the engine's handle contract.
type Buffer struct {
	buf *wgpu.Buffer
}

func (b *Buffer) Destroy() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

// SceneRenderer implements the renderer contract on a WebGPU device. A
// frame is Clear -> ClearDepth -> draws -> Present; the render pass is
// opened lazily on the first call that needs one, so the clear values are
// known by then. When acquiring the swapchain texture fails the frame
// turns into a no-op and the error is logged once.
type SceneRenderer struct {
	dev *Device
	log orbview.Logger

	shaders *ShaderState

	clearColor wgpu.Color
	clearDepth bool

	surfaceTexture *wgpu.Texture
	view           *wgpu.TextureView
	encoder        *wgpu.CommandEncoder
	pass           *wgpu.RenderPassEncoder
	frameBroken    bool

	pendingVertex *wgpu.Buffer
	pendingIndex  *wgpu.Buffer
	pendingStride uint32
}

func NewSceneRenderer(dev *Device, log orbview.Logger) *SceneRenderer {
	return &SceneRenderer{dev: dev, log: log}
}

// AttachShaderState hooks the per-object uniform allocator into the frame
// lifecycle: its slot cursor rewinds whenever a new frame starts.
func (r *SceneRenderer) AttachShaderState(s *ShaderState) {
	r.shaders = s
}

func (r *SceneRenderer) CreateVertexBuffer(data []byte) (orbview.BufferHandle, error) {
	buf, err := r.dev.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Vertex Buffer",
		Contents: data,
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}
	return &Buffer{buf: buf}, nil
}

func (r *SceneRenderer) CreateIndexBuffer(data []byte) (orbview.BufferHandle, error) {
	buf, err := r.dev.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Index Buffer",
		Contents: data,
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return nil, err
	}
	return &Buffer{buf: buf}, nil
}

// Clear starts a new frame with the given background color. Draw state
// from the previous frame is discarded.
func (r *SceneRenderer) Clear(color mgl32.Vec4) {
	r.clearColor = wgpu.Color{
		R: float64(color[0]),
		G: float64(color[1]),
		B: float64(color[2]),
		A: float64(color[3]),
	}
	if r.shaders != nil {
		r.shaders.beginFrame()
	}
}

// ClearDepth requests a depth clear for the frame being assembled.
func (r *SceneRenderer) ClearDepth() {
	r.clearDepth = true
}

func (r *SceneRenderer) BindBuffers(vertex, index orbview.BufferHandle, stride uint32) {
	vb, _ := vertex.(*Buffer)
	ib, _ := index.(*Buffer)
	if vb == nil || ib == nil {
		return
	}
	r.pendingVertex = vb.buf
	r.pendingIndex = ib.buf
	r.pendingStride = stride
}

func (r *SceneRenderer) DrawIndexed(indexCount uint32) {
	if r.pendingVertex == nil || r.pendingIndex == nil {
		return
	}
	pass := r.ensurePass()
	if pass == nil {
		return
	}
	pass.SetVertexBuffer(0, r.pendingVertex, 0, r.pendingVertex.GetSize())
	pass.SetIndexBuffer(r.pendingIndex, wgpu.IndexFormatUint32, 0, r.pendingIndex.GetSize())
	pass.DrawIndexed(indexCount, 1, 0, 0, 0)
}

// ensurePass opens the frame's render pass, acquiring the swapchain
// texture and command encoder on first use. Returns nil when the frame is
// broken; the caller skips its work and the next Clear starts over.
func (r *SceneRenderer) ensurePass() *wgpu.RenderPassEncoder {
	if r.frameBroken {
		return nil
	}
	if r.pass != nil {
		return r.pass
	}

	tex, err := r.dev.surface.GetCurrentTexture()
	if err != nil {
		r.log.Errorf("acquiring swapchain texture: %v", err)
		r.frameBroken = true
		return nil
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		r.log.Errorf("creating swapchain view: %v", err)
		tex.Release()
		r.frameBroken = true
		return nil
	}
	encoder, err := r.dev.device.CreateCommandEncoder(nil)
	if err != nil {
		r.log.Errorf("creating command encoder: %v", err)
		view.Release()
		tex.Release()
		r.frameBroken = true
		return nil
	}
	r.surfaceTexture = tex
	r.view = view
	r.encoder = encoder

	depthLoad := wgpu.LoadOpLoad
	if r.clearDepth {
		depthLoad = wgpu.LoadOpClear
	}
	r.pass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.dev.depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	return r.pass
}

// Present finishes the frame: closes the pass, submits the command buffer
// and presents the swapchain. Called once per frame after all draws.
func (r *SceneRenderer) Present() {
	pass := r.ensurePass() // a frame with zero draws still clears
	if pass != nil {
		if err := pass.End(); err != nil {
			r.log.Errorf("ending render pass: %v", err)
		}
		r.pass = nil

		cmd, err := r.encoder.Finish(nil)
		if err != nil {
			r.log.Errorf("finishing command encoder: %v", err)
		} else {
			r.dev.queue.Submit(cmd)
			r.dev.surface.Present()
		}
	}

	r.encoder = nil
	if r.view != nil {
		r.view.Release()
		r.view = nil
	}
	if r.surfaceTexture != nil {
		r.surfaceTexture.Release()
		r.surfaceTexture = nil
	}
	r.pendingVertex = nil
	r.pendingIndex = nil
	r.clearDepth = false
	r.frameBroken = false
}
