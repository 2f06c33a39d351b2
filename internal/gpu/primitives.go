package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	mplwgpu "github.com/KlingelDev/mpl-wgpu"
)

// initialInstanceCapacity is the instance buffer's starting capacity.
// Batches beyond it trigger an exact-fit reallocation in Prepare.
const initialInstanceCapacity = 1024

// quadVertexCount is the fixed proxy geometry per instance: two triangles
// expanded (or collapsed) in the vertex stage.
const quadVertexCount = 6

// PrimitivePipeline owns the device resources for instanced primitive
// drawing: two render pipelines over the same instance layout, the shared
// uniform buffer and bind group, and the growable instance buffer.
//
// The faces pipeline writes depth and draws the opaque triangle tags
// (30/31); the strokes pipeline draws everything else with depth writes
// off so alpha blending composites against already-resolved geometry.
type PrimitivePipeline struct {
	device hal.Device
	queue  hal.Queue

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	facesPipe     hal.RenderPipeline
	strokesPipe   hal.RenderPipeline

	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	// Instance buffer with tracked capacity in bytes. Capacity only
	// grows; a smaller batch reuses the existing allocation.
	instanceBuf hal.Buffer
	capacity    uint64

	// Draw ranges from the last Prepare.
	faceCount  int
	totalCount int
}

// NewPrimitivePipeline creates the pipeline's persistent GPU objects.
// preferSPIRV routes shader compilation through naga instead of the
// backend's WGSL frontend.
func NewPrimitivePipeline(device hal.Device, queue hal.Queue, preferSPIRV bool) (*PrimitivePipeline, error) {
	p := &PrimitivePipeline{device: device, queue: queue}
	if err := p.create(preferSPIRV); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *PrimitivePipeline) create(preferSPIRV bool) error {
	shader, err := createShaderModule(p.device, "primitives_shader", primitivesShaderSource, preferSPIRV)
	if err != nil {
		return fmt.Errorf("gpu: compile primitives shader: %w", err)
	}
	p.shader = shader

	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "primitives_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "primitives_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	p.facesPipe, err = p.createVariant("primitives_faces", true)
	if err != nil {
		return err
	}
	p.strokesPipe, err = p.createVariant("primitives_strokes", false)
	if err != nil {
		return err
	}

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "primitives_uniforms",
		Size:  mplwgpu.UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "primitives_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: mplwgpu.UniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group: %w", err)
	}
	p.bindGroup = bindGroup

	return p.ensureCapacity(uint64(initialInstanceCapacity * mplwgpu.InstanceStride))
}

// createVariant builds one of the two render pipelines. Both share the
// shader, layout and blend state; they differ only in depth behavior.
func (p *PrimitivePipeline) createVariant(label string, depthWrite bool) (hal.RenderPipeline, error) {
	depthCompare := gputypes.CompareFunctionLessEqual
	if depthWrite {
		depthCompare = gputypes.CompareFunctionLess
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    instanceVertexLayout(),
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
			DepthWriteEnabled: depthWrite,
			DepthCompare:      depthCompare,
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
		return nil, fmt.Errorf("gpu: create %s pipeline: %w", label, err)
	}
	return pipeline, nil
}

// ensureCapacity grows the instance buffer to at least size bytes.
// Growth is exact-fit: batches are rebuilt every frame and invocation
// frequency is low, so amortized doubling buys nothing here.
func (p *PrimitivePipeline) ensureCapacity(size uint64) error {
	if size <= p.capacity && p.instanceBuf != nil {
		return nil
	}
	if p.instanceBuf != nil {
		p.device.DestroyBuffer(p.instanceBuf)
		p.instanceBuf = nil
	}
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "primitives_instances",
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create instance buffer (%d bytes): %w", size, err)
	}
	p.instanceBuf = buf
	p.capacity = size
	slogger().Debug("gpu: instance buffer grown", "bytes", size)
	return nil
}

// Prepare sorts the batch faces-first, grows the instance buffer if the
// batch exceeds its capacity, and uploads instances and uniforms. A nil
// or empty batch resets the draw ranges and uploads nothing.
//
// The sort is stable: within the faces range and within the strokes
// range, instances keep their insertion order, so later appends paint
// over earlier ones.
func (p *PrimitivePipeline) Prepare(batch []mplwgpu.Instance, uniforms []byte) error {
	p.faceCount = 0
	p.totalCount = len(batch)
	if len(batch) == 0 {
		return nil
	}

	mplwgpu.SortFacesFirst(batch)
	p.faceCount = mplwgpu.FacePartition(batch)

	data := mplwgpu.InstanceBytes(batch)
	if err := p.ensureCapacity(uint64(len(data))); err != nil {
		return err
	}
	p.queue.WriteBuffer(p.instanceBuf, 0, data)
	p.queue.WriteBuffer(p.uniformBuf, 0, uniforms)
	return nil
}

// RecordDraws records the two instanced draws into an open render pass:
// the faces range on the depth-writing pipeline, then the strokes range
// on the blend pipeline. Empty ranges are skipped; an empty batch records
// nothing.
func (p *PrimitivePipeline) RecordDraws(rp hal.RenderPassEncoder) {
	if p.totalCount == 0 {
		return
	}
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.instanceBuf, 0)

	if p.faceCount > 0 {
		rp.SetPipeline(p.facesPipe)
		rp.Draw(quadVertexCount, uint32(p.faceCount), 0, 0)
	}
	if strokes := p.totalCount - p.faceCount; strokes > 0 {
		rp.SetPipeline(p.strokesPipe)
		rp.Draw(quadVertexCount, uint32(strokes), 0, uint32(p.faceCount))
	}
}

// Capacity returns the instance buffer capacity in bytes.
func (p *PrimitivePipeline) Capacity() uint64 { return p.capacity }

// DrawRanges returns the face and total instance counts from the last
// Prepare.
func (p *PrimitivePipeline) DrawRanges() (faces, total int) {
	return p.faceCount, p.totalCount
}

// Destroy releases all GPU resources in reverse creation order. Safe to
// call multiple times.
func (p *PrimitivePipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.instanceBuf != nil {
		p.device.DestroyBuffer(p.instanceBuf)
		p.instanceBuf = nil
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.strokesPipe != nil {
		p.device.DestroyRenderPipeline(p.strokesPipe)
		p.strokesPipe = nil
	}
	if p.facesPipe != nil {
		p.device.DestroyRenderPipeline(p.facesPipe)
		p.facesPipe = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
	p.capacity = 0
}

// instanceVertexLayout returns the per-instance vertex buffer layout
// matching InstanceIn in primitives.wgsl.
func instanceVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: uint64(mplwgpu.InstanceStride),
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // anchor_a
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1}, // anchor_b
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 2}, // color
				{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 3}, // params
				{Format: gputypes.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 4}, // anchor_c
			},
		},
	}
}
