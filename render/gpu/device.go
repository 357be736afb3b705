// Package gpu implements the render device contract on WebGPU. Flushes are recorded into a
// frame and encoded into render passes when the frame is presented.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sculpto/sculpto"
	"github.com/sculpto/sculpto/render"
	"github.com/sculpto/sculpto/render/shaders"
	"github.com/sculpto/sculpto/render/topology"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

var primitiveTopologies = map[render.Topology]wgpu.PrimitiveTopology{
	render.TopologyPoints:        wgpu.PrimitiveTopologyPointList,
	render.TopologyLines:         wgpu.PrimitiveTopologyLineList,
	render.TopologyTriangles:     wgpu.PrimitiveTopologyTriangleList,
	render.TopologyTriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
}

type Device struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	format wgpu.TextureFormat
	logger sculpto.Logger

	frameLayout *wgpu.BindGroupLayout
	drawLayout  *wgpu.BindGroupLayout
	pipelines   map[render.Topology]*wgpu.RenderPipeline

	passBuf    *wgpu.Buffer
	lightsBuf  *wgpu.Buffer
	drawBuf    *wgpu.Buffer
	frameGroup *wgpu.BindGroup
	drawGroup  *wgpu.BindGroup

	depth     *wgpu.Texture
	depthView *wgpu.TextureView
	width     uint32
	height    uint32

	ClearColor wgpu.Color
	Overlay    *TextPass

	frame frame
}

// NewDevice builds the Phong pipelines for color targets of the given format.
func NewDevice(device *wgpu.Device, format wgpu.TextureFormat, width, height int, logger sculpto.Logger) (*Device, error) {
	d := &Device{
		device:     device,
		queue:      device.GetQueue(),
		format:     format,
		logger:     sculpto.LoggerOrNop(logger),
		pipelines:  make(map[render.Topology]*wgpu.RenderPipeline),
		ClearColor: wgpu.Color{R: 0.1, G: 0.1, B: 0.12, A: 1},
	}

	var err error
	d.frameLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Sculpto Frame BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, render.PassDataSize),
			uniformEntry(1, wgpu.ShaderStageFragment, render.LightsStorageSize),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("frame bind group layout: %w", err)
	}
	d.drawLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Sculpto Draw BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, drawDataSize),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("draw bind group layout: %w", err)
	}

	if err := d.createPipelines(); err != nil {
		return nil, err
	}

	// one slot each so the bind groups are valid before the first flush
	if err := d.upload(make([]byte, passStride), make([]byte, lightsStride), make([]byte, drawStride)); err != nil {
		return nil, err
	}
	if err := d.Resize(width, height); err != nil {
		return nil, err
	}
	return d, nil
}

func uniformEntry(binding uint32, visibility wgpu.ShaderStage, size uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: true,
			MinBindingSize:   size,
		},
	}
}

func (d *Device) createPipelines() error {
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Phong Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PhongWGSL},
	})
	if err != nil {
		return fmt.Errorf("phong shader: %w", err)
	}
	defer module.Release()

	layout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Phong Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{d.frameLayout, d.drawLayout},
	})
	if err != nil {
		return fmt.Errorf("phong pipeline layout: %w", err)
	}

	for topo, prim := range primitiveTopologies {
		primitive := wgpu.PrimitiveState{
			Topology:  prim,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		}
		switch topo {
		case render.TopologyTriangles:
			primitive.CullMode = wgpu.CullModeBack
		case render.TopologyTriangleStrip:
			primitive.StripIndexFormat = wgpu.IndexFormatUint32
		}

		pipeline, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
			Label:  "Phong Pipeline " + topo.String(),
			Layout: layout,
			Vertex: wgpu.VertexState{
				Module:     module,
				EntryPoint: "vs_main",
				Buffers: []wgpu.VertexBufferLayout{{
					ArrayStride: topology.VertexSize,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
					},
				}},
			},
			Fragment: &wgpu.FragmentState{
				Module:     module,
				EntryPoint: "fs_main",
				Targets: []wgpu.ColorTargetState{{
					Format:    d.format,
					WriteMask: wgpu.ColorWriteMaskAll,
				}},
			},
			Primitive: primitive,
			DepthStencil: &wgpu.DepthStencilState{
				Format:            depthFormat,
				DepthWriteEnabled: true,
				DepthCompare:      wgpu.CompareFunctionLess,
				StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
				StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			},
			Multisample: wgpu.MultisampleState{
				Count: 1,
				Mask:  0xFFFFFFFF,
			},
		})
		if err != nil {
			return fmt.Errorf("phong pipeline %v: %w", topo, err)
		}
		d.pipelines[topo] = pipeline
	}
	return nil
}

// ensureBufferRecreated grows buf to hold data and writes data at offset 0.
// It reports whether the buffer was recreated.
func (d *Device) ensureBufferRecreated(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) (bool, error) {
	needed := uint64(len(data))
	if needed%4 != 0 {
		needed += 4 - needed%4
	}

	recreated := false
	if current := *buf; current == nil || current.GetSize() < needed {
		if current != nil {
			current.Release()
		}
		newBuf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name,
			Size:  needed,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return false, fmt.Errorf("create buffer %s: %w", name, err)
		}
		*buf = newBuf
		recreated = true
	}
	if len(data) > 0 {
		if err := d.queue.WriteBuffer(*buf, 0, data); err != nil {
			return recreated, fmt.Errorf("write buffer %s: %w", name, err)
		}
	}
	return recreated, nil
}

func (d *Device) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) error {
	_, err := d.ensureBufferRecreated(name, buf, data, usage)
	return err
}

// upload writes the staged uniform blocks and rebuilds the bind groups of any grown buffer.
func (d *Device) upload(pass, lights, draws []byte) error {
	passNew, err := d.ensureBufferRecreated("Sculpto PassData", &d.passBuf, pass, wgpu.BufferUsageUniform)
	if err != nil {
		return err
	}
	lightsNew, err := d.ensureBufferRecreated("Sculpto Lights", &d.lightsBuf, lights, wgpu.BufferUsageUniform)
	if err != nil {
		return err
	}
	drawNew, err := d.ensureBufferRecreated("Sculpto DrawData", &d.drawBuf, draws, wgpu.BufferUsageUniform)
	if err != nil {
		return err
	}

	if passNew || lightsNew || d.frameGroup == nil {
		if d.frameGroup != nil {
			d.frameGroup.Release()
		}
		d.frameGroup, err = d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Sculpto Frame BG",
			Layout: d.frameLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: d.passBuf, Size: render.PassDataSize},
				{Binding: 1, Buffer: d.lightsBuf, Size: render.LightsStorageSize},
			},
		})
		if err != nil {
			return fmt.Errorf("frame bind group: %w", err)
		}
	}
	if drawNew || d.drawGroup == nil {
		if d.drawGroup != nil {
			d.drawGroup.Release()
		}
		d.drawGroup, err = d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Sculpto Draw BG",
			Layout: d.drawLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: d.drawBuf, Size: drawDataSize},
			},
		})
		if err != nil {
			return fmt.Errorf("draw bind group: %w", err)
		}
	}
	return nil
}

func (d *Device) createTarget(label string, format wgpu.TextureFormat, w, h uint32, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create texture %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create view %s: %w", label, err)
	}
	return tex, view, nil
}

// Resize recreates the depth buffer of the default framebuffer. Zero sizes are ignored.
func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if d.depthView != nil {
		d.depthView.Release()
		d.depth.Release()
	}
	var err error
	d.depth, d.depthView, err = d.createTarget("Default Depth", depthFormat, uint32(width), uint32(height), wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return err
	}
	d.width, d.height = uint32(width), uint32(height)
	return nil
}

func (d *Device) WriteUniform(slot render.UniformSlot, data []byte) error {
	return d.frame.writeUniform(slot, data)
}

func (d *Device) Draw(call render.DrawCall) error {
	return d.frame.record(call)
}

// DiscardFrame drops everything flushed since the last Present, for frames with no
// swapchain image to draw into.
func (d *Device) DiscardFrame() {
	d.logger.Debugf("gpu: frame dropped with %d batches", len(d.frame.batches))
	d.frame.reset()
}

// Present encodes every flush recorded since the last Present, then the overlay, into one
// command buffer and submits it. view is the color target of the default framebuffer.
func (d *Device) Present(view *wgpu.TextureView) error {
	defer d.frame.reset()

	if len(d.frame.batches) > 0 {
		if err := d.upload(d.frame.passData, d.frame.lightsData, d.frame.drawData); err != nil {
			return err
		}
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	cleared := make(map[*Framebuffer]bool)
	for _, b := range d.frame.batches {
		if b.lights < 0 {
			d.logger.Warnf("gpu: batch %d has no lights block, skipped", b.pass)
			continue
		}
		if err := d.encodeBatch(encoder, view, b, cleared); err != nil {
			return err
		}
	}

	if !cleared[nil] || d.Overlay != nil {
		if err := d.encodeOverlay(encoder, view, !cleared[nil]); err != nil {
			return err
		}
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmd.Release()
	d.queue.Submit(cmd)
	return nil
}

func (d *Device) encodeBatch(encoder *wgpu.CommandEncoder, view *wgpu.TextureView, b batch, cleared map[*Framebuffer]bool) error {
	colorView, depthView := view, d.depthView
	if b.target != nil {
		if !b.target.Valid() {
			d.logger.Warnf("gpu: target %s released before present, %d draws dropped", b.target.name, len(b.draws))
			return nil
		}
		colorView, depthView = b.target.colorView, b.target.depthView
	}
	load := wgpu.LoadOpClear
	if cleared[b.target] {
		load = wgpu.LoadOpLoad
	}
	cleared[b.target] = true

	rp := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Sculpto Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       colorView,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: d.ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     load,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	defer rp.Release()

	rp.SetBindGroup(0, d.frameGroup, []uint32{uint32(b.pass * passStride), uint32(b.lights * lightsStride)})
	for _, cmd := range b.draws {
		if !cmd.mesh.Valid() {
			continue
		}
		rp.SetPipeline(d.pipelines[cmd.mesh.topology])
		rp.SetBindGroup(1, d.drawGroup, []uint32{uint32(cmd.slot * drawStride)})
		rp.SetVertexBuffer(0, cmd.mesh.vertices, 0, wgpu.WholeSize)
		rp.SetIndexBuffer(cmd.mesh.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		rp.DrawIndexed(cmd.mesh.indexCount, 1, 0, 0, 0)
	}
	if err := rp.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}
	return nil
}

func (d *Device) encodeOverlay(encoder *wgpu.CommandEncoder, view *wgpu.TextureView, clearFirst bool) error {
	if d.Overlay != nil {
		if err := d.Overlay.prepare(int(d.width), int(d.height)); err != nil {
			return err
		}
	}
	load := wgpu.LoadOpLoad
	if clearFirst {
		load = wgpu.LoadOpClear
	}
	rp := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Overlay Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: d.ClearColor,
		}},
	})
	defer rp.Release()
	if d.Overlay != nil {
		d.Overlay.draw(rp)
	}
	if err := rp.End(); err != nil {
		return fmt.Errorf("end overlay pass: %w", err)
	}
	return nil
}

func (d *Device) Release() {
	for _, p := range d.pipelines {
		p.Release()
	}
	for _, b := range []*wgpu.Buffer{d.passBuf, d.lightsBuf, d.drawBuf} {
		if b != nil {
			b.Release()
		}
	}
	for _, g := range []*wgpu.BindGroup{d.frameGroup, d.drawGroup} {
		if g != nil {
			g.Release()
		}
	}
	if d.depthView != nil {
		d.depthView.Release()
		d.depth.Release()
	}
	if d.Overlay != nil {
		d.Overlay.Release()
	}
}
