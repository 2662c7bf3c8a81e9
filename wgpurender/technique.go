package wgpurender

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/orbview/orbview"
)

// Technique compiles the forward-shading WGSL into a single-pass render
// pipeline and owns its bind groups. The pipeline layout is explicit:
// automatic layouts cannot express the dynamic offset the per-draw object
// slots need.
type Technique struct {
	dev      *Device
	renderer *SceneRenderer
	shaders  *ShaderState

	pipeline     *wgpu.RenderPipeline
	globalsBGL   *wgpu.BindGroupLayout
	objectBGL    *wgpu.BindGroupLayout
	globalsBG    *wgpu.BindGroup
	objectBG     *wgpu.BindGroup
	bgGeneration int
}

func NewTechnique(dev *Device, renderer *SceneRenderer, shaders *ShaderState) (*Technique, error) {
	t := &Technique{dev: dev, renderer: renderer, shaders: shaders, bgGeneration: -1}

	module, err := dev.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Forward Shading",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: forwardWGSL},
	})
	if err != nil {
		return nil, &orbview.DeviceError{Op: "compile shader", Err: err}
	}
	defer module.Release()

	t.globalsBGL, err = dev.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "GlobalsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: globalsSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return nil, &orbview.DeviceError{Op: "create globals layout", Err: err}
	}

	t.objectBGL, err = dev.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ObjectBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   objectDataSize,
				},
			},
		},
	})
	if err != nil {
		return nil, &orbview.DeviceError{Op: "create object layout", Err: err}
	}

	layout, err := dev.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{t.globalsBGL, t.objectBGL},
	})
	if err != nil {
		return nil, &orbview.DeviceError{Op: "create pipeline layout", Err: err}
	}
	defer layout.Release()

	t.pipeline, err = dev.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Forward Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: orbview.VertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 24, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    dev.SurfaceFormat(),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			// Generated meshes wind clockwise.
			FrontFace: wgpu.FrontFaceCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare:     wgpu.CompareFunctionAlways,
				FailOp:      wgpu.StencilOperationKeep,
				DepthFailOp: wgpu.StencilOperationKeep,
				PassOp:      wgpu.StencilOperationKeep,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare:     wgpu.CompareFunctionAlways,
				FailOp:      wgpu.StencilOperationKeep,
				DepthFailOp: wgpu.StencilOperationKeep,
				PassOp:      wgpu.StencilOperationKeep,
			},
			StencilReadMask:  0xFFFFFFFF,
			StencilWriteMask: 0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, &orbview.DeviceError{Op: "create render pipeline", Err: err}
	}

	if err := t.rebuildBindGroups(); err != nil {
		return nil, err
	}
	return t, nil
}

// rebuildBindGroups recreates both groups; the globals group also happens
// whenever the floor texture changes.
func (t *Technique) rebuildBindGroups() error {
	if t.globalsBG != nil {
		t.globalsBG.Release()
		t.globalsBG = nil
	}
	if t.objectBG != nil {
		t.objectBG.Release()
		t.objectBG = nil
	}

	var err error
	t.globalsBG, err = t.dev.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "GlobalsBG",
		Layout: t.globalsBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: t.shaders.globals, Size: globalsSize},
			{Binding: 1, TextureView: t.shaders.floorView},
			{Binding: 2, Sampler: t.shaders.sampler},
		},
	})
	if err != nil {
		return &orbview.DeviceError{Op: "create globals bind group", Err: err}
	}

	t.objectBG, err = t.dev.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ObjectBG",
		Layout: t.objectBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: t.shaders.objects, Size: objectDataSize},
		},
	})
	if err != nil {
		return &orbview.DeviceError{Op: "create object bind group", Err: err}
	}

	t.bgGeneration = t.shaders.texGeneration
	return nil
}

// PassCount reports the technique's pass count; forward shading is a
// single pass.
func (t *Technique) PassCount() int { return 1 }

// ApplyPass binds the pipeline and both groups on the frame's render
// pass, pointing the object group at the current draw's slot.
func (t *Technique) ApplyPass(pass int) {
	rp := t.renderer.ensurePass()
	if rp == nil {
		return
	}
	if t.bgGeneration != t.shaders.texGeneration {
		if err := t.rebuildBindGroups(); err != nil {
			t.renderer.log.Errorf("rebuilding bind groups: %v", err)
			return
		}
	}

	rp.SetPipeline(t.pipeline)
	rp.SetBindGroup(0, t.globalsBG, nil)
	rp.SetBindGroup(1, t.objectBG, []uint32{t.shaders.dynamicOffset()})
}

// Close releases the pipeline and bind groups.
func (t *Technique) Close() {
	if t.globalsBG != nil {
		t.globalsBG.Release()
		t.globalsBG = nil
	}
	if t.objectBG != nil {
		t.objectBG.Release()
		t.objectBG = nil
	}
	if t.objectBGL != nil {
		t.objectBGL.Release()
		t.objectBGL = nil
	}
	if t.globalsBGL != nil {
		t.globalsBGL.Release()
		t.globalsBGL = nil
	}
	if t.pipeline != nil {
		t.pipeline.Release()
		t.pipeline = nil
	}
}
