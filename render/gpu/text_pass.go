package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sculpto/sculpto/render/overlay"
	"github.com/sculpto/sculpto/render/shaders"
)

// TextPass draws screen-space text over the default framebuffer after every flushed pass.
type TextPass struct {
	device *Device
	atlas  *overlay.Atlas

	texture   *wgpu.Texture
	view      *wgpu.TextureView
	sampler   *wgpu.Sampler
	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup

	vertexBuf   *wgpu.Buffer
	vertexCount uint32

	Items []overlay.Item
}

func (d *Device) NewTextPass(atlas *overlay.Atlas) (*TextPass, error) {
	p := &TextPass{device: d, atlas: atlas}
	if err := p.setup(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *TextPass) setup() error {
	d := p.device
	w, h := p.atlas.Image.Bounds().Dx(), p.atlas.Image.Bounds().Dy()

	var err error
	p.texture, err = d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("text atlas texture: %w", err)
	}
	err = d.queue.WriteTexture(p.texture.AsImageCopy(), p.atlas.Image.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	if err != nil {
		return fmt.Errorf("text atlas upload: %w", err)
	}
	if p.view, err = p.texture.CreateView(nil); err != nil {
		return fmt.Errorf("text atlas view: %w", err)
	}

	p.sampler, err = d.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("text sampler: %w", err)
	}

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return fmt.Errorf("text shader: %w", err)
	}
	defer module.Release()

	p.pipeline, err = d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(overlay.Vertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: d.format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("text pipeline: %w", err)
	}

	p.bindGroup, err = d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Text BG",
		Layout: p.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: p.view},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("text bind group: %w", err)
	}
	return nil
}

func (p *TextPass) Atlas() *overlay.Atlas { return p.atlas }

// prepare uploads the quads of the current Items for a screen of width x height.
func (p *TextPass) prepare(width, height int) error {
	p.vertexCount = 0
	vertices := p.atlas.BuildVertices(p.Items, width, height)
	if len(vertices) == 0 {
		return nil
	}
	size := len(vertices) * int(unsafe.Sizeof(overlay.Vertex{}))
	data := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), size)
	if err := p.device.ensureBuffer("Text VB", &p.vertexBuf, data, wgpu.BufferUsageVertex); err != nil {
		return err
	}
	p.vertexCount = uint32(len(vertices))
	return nil
}

func (p *TextPass) draw(rp *wgpu.RenderPassEncoder) {
	if p.vertexCount == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertexBuf, 0, wgpu.WholeSize)
	rp.Draw(p.vertexCount, 1, 0, 0)
}

func (p *TextPass) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.view != nil {
		p.view.Release()
	}
	if p.texture != nil {
		p.texture.Release()
	}
	if p.vertexBuf != nil {
		p.vertexBuf.Release()
	}
}
