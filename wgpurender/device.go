// Package wgpurender is the WebGPU backend of the engine: it owns the
// graphics device, implements the renderer and shader-bridge contracts the
// scene draws through, and compiles the WGSL technique.
package wgpurender

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/orbview/orbview"
)

// DepthFormat is the depth attachment format every pipeline renders
// against.
const DepthFormat = wgpu.TextureFormatDepth32Float

// Device bundles the WebGPU instance, surface and logical device for one
// window. Everything in this package hangs off a Device; it is created
// once at startup and closed once at shutdown. A device-level failure is
// fatal, callers abort instead of retrying.
type Device struct {
	window *glfw.Window
	log    orbview.Logger

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
}

// NewDevice initializes WebGPU against the window's surface and
// configures the swapchain at the current framebuffer size.
func NewDevice(window *glfw.Window, log orbview.Logger) (*Device, error) {
	d := &Device{window: window, log: log}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: d.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		d.release()
		return nil, &orbview.DeviceError{Op: "request adapter", Err: err}
	}
	d.adapter = adapter

	d.device, err = adapter.RequestDevice(nil)
	if err != nil {
		d.release()
		return nil, &orbview.DeviceError{Op: "request device", Err: err}
	}
	d.queue = d.device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := d.surface.GetCapabilities(adapter)
	d.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	d.surface.Configure(adapter, d.device, d.config)

	if err := d.createDepth(); err != nil {
		d.release()
		return nil, err
	}

	log.Infof("wgpu device ready, surface %dx%d format %v", width, height, d.config.Format)
	return d, nil
}

func (d *Device) createDepth() error {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth",
		Size: wgpu.Extent3D{
			Width:              d.config.Width,
			Height:             d.config.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return &orbview.DeviceError{Op: "create depth texture", Err: err}
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return &orbview.DeviceError{Op: "create depth view", Err: err}
	}
	d.depthTexture = tex
	d.depthView = view
	return nil
}

func (d *Device) dropDepth() {
	if d.depthView != nil {
		d.depthView.Release()
		d.depthView = nil
	}
	if d.depthTexture != nil {
		d.depthTexture.Release()
		d.depthTexture = nil
	}
}

// Resize reconfigures the swapchain and depth buffer for a new
// framebuffer size. Zero sizes (minimized window) are ignored.
func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	d.config.Width = uint32(width)
	d.config.Height = uint32(height)
	d.surface.Configure(d.adapter, d.device, d.config)

	d.dropDepth()
	return d.createDepth()
}

// AspectRatio returns width over height of the current swapchain.
func (d *Device) AspectRatio() float32 {
	return float32(d.config.Width) / float32(d.config.Height)
}

// SurfaceFormat returns the configured swapchain texture format.
func (d *Device) SurfaceFormat() wgpu.TextureFormat {
	return d.config.Format
}

func (d *Device) release() {
	d.dropDepth()
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// Close tears the device down. Resources created from it must already be
// destroyed.
func (d *Device) Close() {
	d.release()
}
