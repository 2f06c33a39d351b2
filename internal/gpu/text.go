package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrTooManyQuads reports a frame whose glyph quads exceed the uint16
// index space.
var ErrTooManyQuads = errors.New("gpu: too many glyph quads for one frame")

// textVertexStride is the byte stride per glyph-quad vertex:
// position (vec2) + uv (vec2) + color (vec4) = 32 bytes.
const textVertexStride = 32

// textUniformSize is the text uniform block: screen size vec2 + padding.
const textUniformSize = 16

// maxTextQuads is the largest quad count addressable with uint16 indices
// at four vertices per quad.
const maxTextQuads = 65536 / 4

// TextQuad is one positioned glyph: pixel-space corners, atlas UVs in
// [0, 1], and the run's straight RGBA color.
type TextQuad struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
	Color          [4]float32
}

// TextPipeline draws glyph quads over the primitive output in the same
// render pass. Vertex and index buffers are rebuilt per frame; the
// shader, sampler, uniform buffer and atlas bind group persist.
type TextPipeline struct {
	device hal.Device
	queue  hal.Queue

	atlas *GlyphAtlas

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	// Per-frame resources, released by EndFrame.
	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	indexCount uint32
}

// NewTextPipeline creates the text pipeline and its glyph atlas.
func NewTextPipeline(device hal.Device, queue hal.Queue, preferSPIRV bool) (*TextPipeline, error) {
	p := &TextPipeline{device: device, queue: queue}
	if err := p.create(preferSPIRV); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *TextPipeline) create(preferSPIRV bool) error {
	atlas, err := NewGlyphAtlas(p.device, p.queue)
	if err != nil {
		return err
	}
	p.atlas = atlas

	shader, err := createShaderModule(p.device, "text_shader", textShaderSource, preferSPIRV)
	if err != nil {
		return fmt.Errorf("gpu: compile text shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "text_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "text_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "text_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("gpu: create text sampler: %w", err)
	}
	p.sampler = sampler

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "text_uniforms",
		Size:  textUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create text uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "text_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: textUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: p.atlas.View().NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text bind group: %w", err)
	}
	p.bindGroup = bindGroup

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "text_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    textVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            gputypes.TextureFormatDepth32Float,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// Atlas returns the glyph atlas for cache lookups and insertions.
func (p *TextPipeline) Atlas() *GlyphAtlas { return p.atlas }

// Prepare uploads the frame's glyph quads: flushes the atlas, writes the
// screen-size uniform, and builds fresh vertex/index buffers. No quads
// resets the frame to draw nothing. Batches beyond the uint16 index
// space fail with ErrTooManyQuads.
func (p *TextPipeline) Prepare(quads []TextQuad, screenW, screenH float32) error {
	p.EndFrame()
	if len(quads) == 0 {
		return nil
	}
	if len(quads) > maxTextQuads {
		return fmt.Errorf("%w: %d > %d", ErrTooManyQuads, len(quads), maxTextQuads)
	}

	p.atlas.Flush()

	uniform := make([]byte, textUniformSize)
	binary.LittleEndian.PutUint32(uniform[0:], math.Float32bits(screenW))
	binary.LittleEndian.PutUint32(uniform[4:], math.Float32bits(screenH))
	p.queue.WriteBuffer(p.uniformBuf, 0, uniform)

	vertData := buildTextVertexData(quads)
	vertBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "text_verts",
		Size:  uint64(len(vertData)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create text vertex buffer: %w", err)
	}
	p.queue.WriteBuffer(vertBuf, 0, vertData)
	p.vertBuf = vertBuf

	idxData := buildTextIndexData(len(quads))
	idxBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "text_indices",
		Size:  uint64(len(idxData)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		p.EndFrame()
		return fmt.Errorf("gpu: create text index buffer: %w", err)
	}
	p.queue.WriteBuffer(idxBuf, 0, idxData)
	p.idxBuf = idxBuf

	p.indexCount = uint32(len(quads) * 6)
	return nil
}

// RecordDraws records the glyph draw into an open render pass. Text is
// drawn after primitives so labels sit on top of the chart content.
func (p *TextPipeline) RecordDraws(rp hal.RenderPassEncoder) {
	if p.indexCount == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertBuf, 0)
	rp.SetIndexBuffer(p.idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(p.indexCount, 1, 0, 0, 0)
}

// EndFrame releases the per-frame vertex and index buffers.
func (p *TextPipeline) EndFrame() {
	if p.vertBuf != nil {
		p.device.DestroyBuffer(p.vertBuf)
		p.vertBuf = nil
	}
	if p.idxBuf != nil {
		p.device.DestroyBuffer(p.idxBuf)
		p.idxBuf = nil
	}
	p.indexCount = 0
}

// Destroy releases all pipeline resources in reverse creation order.
// Safe to call multiple times.
func (p *TextPipeline) Destroy() {
	if p.device == nil {
		return
	}
	p.EndFrame()
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
	if p.atlas != nil {
		p.atlas.Destroy()
		p.atlas = nil
	}
}

// textVertexLayout matches VsIn in text.wgsl.
func textVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: textVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // pos
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}

// buildTextVertexData serializes quads into raw vertex bytes: four
// vertices per quad for indexed drawing.
func buildTextVertexData(quads []TextQuad) []byte {
	data := make([]byte, len(quads)*4*textVertexStride)
	off := 0
	for i := range quads {
		q := &quads[i]
		off = writeTextVertex(data, off, q.X0, q.Y0, q.U0, q.V0, q.Color)
		off = writeTextVertex(data, off, q.X1, q.Y0, q.U1, q.V0, q.Color)
		off = writeTextVertex(data, off, q.X1, q.Y1, q.U1, q.V1, q.Color)
		off = writeTextVertex(data, off, q.X0, q.Y1, q.U0, q.V1, q.Color)
	}
	return data
}

func writeTextVertex(buf []byte, off int, x, y, u, v float32, color [4]float32) int {
	for _, f := range [...]float32{x, y, u, v, color[0], color[1], color[2], color[3]} {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	return off
}

// buildTextIndexData generates the 0,1,2 2,3,0 index pattern per quad.
func buildTextIndexData(numQuads int) []byte {
	data := make([]byte, numQuads*6*2)
	off := 0
	for i := 0; i < numQuads; i++ {
		base := uint16(i * 4)
		for _, idx := range [...]uint16{0, 1, 2, 2, 3, 0} {
			binary.LittleEndian.PutUint16(data[off:], base+idx)
			off += 2
		}
	}
	return data
}
