//go:build !nogpu

package gpu

import (
	"testing"

	mplwgpu "github.com/KlingelDev/mpl-wgpu"
)

func TestNewPrimitivePipeline(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPrimitivePipeline(device, queue, false)
	if err != nil {
		t.Fatalf("NewPrimitivePipeline failed: %v", err)
	}
	defer p.Destroy()

	want := uint64(initialInstanceCapacity * mplwgpu.InstanceStride)
	if p.Capacity() != want {
		t.Errorf("initial capacity = %d, want %d", p.Capacity(), want)
	}
	faces, total := p.DrawRanges()
	if faces != 0 || total != 0 {
		t.Errorf("draw ranges before Prepare = (%d, %d), want (0, 0)", faces, total)
	}
}

func TestPrimitivePipelinePrepareRanges(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPrimitivePipeline(device, queue, false)
	if err != nil {
		t.Fatalf("NewPrimitivePipeline failed: %v", err)
	}
	defer p.Destroy()

	batch := []mplwgpu.Instance{
		{Params: [4]float32{mplwgpu.PrimLine, 0, 0, 0}},
		{Params: [4]float32{mplwgpu.PrimTriangleLit, 0, 0, 0}},
		{Params: [4]float32{mplwgpu.PrimRect, 0, 0, 0}},
		{Params: [4]float32{mplwgpu.PrimTriangleUnlit, 0, 0, 0}},
	}
	uniforms := make([]byte, mplwgpu.UniformSize)
	if err := p.Prepare(batch, uniforms); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	faces, total := p.DrawRanges()
	if faces != 2 {
		t.Errorf("faces = %d, want 2", faces)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
}

func TestPrimitivePipelinePrepareEmpty(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPrimitivePipeline(device, queue, false)
	if err != nil {
		t.Fatalf("NewPrimitivePipeline failed: %v", err)
	}
	defer p.Destroy()

	uniforms := make([]byte, mplwgpu.UniformSize)
	if err := p.Prepare(nil, uniforms); err != nil {
		t.Fatalf("Prepare(nil) failed: %v", err)
	}
	faces, total := p.DrawRanges()
	if faces != 0 || total != 0 {
		t.Errorf("draw ranges = (%d, %d), want (0, 0)", faces, total)
	}
}

func TestPrimitivePipelineCapacityGrowth(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p, err := NewPrimitivePipeline(device, queue, false)
	if err != nil {
		t.Fatalf("NewPrimitivePipeline failed: %v", err)
	}
	defer p.Destroy()

	initial := p.Capacity()
	uniforms := make([]byte, mplwgpu.UniformSize)

	big := make([]mplwgpu.Instance, initialInstanceCapacity+100)
	if err := p.Prepare(big, uniforms); err != nil {
		t.Fatalf("Prepare(big) failed: %v", err)
	}
	grown := p.Capacity()
	want := uint64(len(big) * mplwgpu.InstanceStride)
	if grown != want {
		t.Errorf("grown capacity = %d, want exact fit %d", grown, want)
	}
	if grown <= initial {
		t.Errorf("capacity did not grow: %d -> %d", initial, grown)
	}

	// A smaller batch must not shrink the buffer.
	small := make([]mplwgpu.Instance, 10)
	if err := p.Prepare(small, uniforms); err != nil {
		t.Fatalf("Prepare(small) failed: %v", err)
	}
	if p.Capacity() != grown {
		t.Errorf("capacity shrank to %d after small batch, want %d", p.Capacity(), grown)
	}
}
