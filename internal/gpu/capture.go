package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row-start alignment GPU copy engines require
// for texture-to-buffer transfers.
const copyPitchAlignment = 256

// fenceWaitTimeout bounds the blocking wait on GPU completion. The
// capture contract is synchronous with a single in-flight readback;
// exceeding this means the device is wedged.
const fenceWaitTimeout = 5 * time.Second

// PaddedBytesPerRow returns width*4 rounded up to the copy-row alignment.
// The staging buffer is written with this stride and the padding tail of
// every row is stripped on readback.
func PaddedBytesPerRow(width uint32) uint32 {
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// CaptureTarget is the off-screen render target: a color texture with
// render-attachment and copy-source usage, a depth texture for the
// face pipeline's depth writes, and a CPU-mappable staging buffer sized
// to the padded row stride. Created once, reused across frames, and
// recreated only on resize.
type CaptureTarget struct {
	device hal.Device
	queue  hal.Queue

	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView
	staging   hal.Buffer

	width  uint32
	height uint32
}

// NewCaptureTarget creates the off-screen target at the given size.
func NewCaptureTarget(device hal.Device, queue hal.Queue, width, height uint32) (*CaptureTarget, error) {
	t := &CaptureTarget{device: device, queue: queue}
	if err := t.ensure(width, height); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

// Resize recreates the textures and staging buffer if the requested
// dimensions differ from the current size.
func (t *CaptureTarget) Resize(width, height uint32) error {
	return t.ensure(width, height)
}

// Size returns the current target dimensions.
func (t *CaptureTarget) Size() (uint32, uint32) {
	return t.width, t.height
}

func (t *CaptureTarget) ensure(w, h uint32) error {
	if t.width == w && t.height == h && t.colorTex != nil {
		return nil
	}
	t.destroyResources()

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	colorTex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "capture_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("gpu: create capture color texture: %w", err)
	}
	t.colorTex = colorTex

	colorView, err := t.device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: "capture_color_view",
	})
	if err != nil {
		t.destroyResources()
		return fmt.Errorf("gpu: create capture color view: %w", err)
	}
	t.colorView = colorView

	depthTex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "capture_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth32Float,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.destroyResources()
		return fmt.Errorf("gpu: create capture depth texture: %w", err)
	}
	t.depthTex = depthTex

	depthView, err := t.device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label: "capture_depth_view",
	})
	if err != nil {
		t.destroyResources()
		return fmt.Errorf("gpu: create capture depth view: %w", err)
	}
	t.depthView = depthView

	staging, err := t.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "capture_staging",
		Size:  uint64(PaddedBytesPerRow(w)) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.destroyResources()
		return fmt.Errorf("gpu: create capture staging buffer: %w", err)
	}
	t.staging = staging

	t.width = w
	t.height = h
	slogger().Info("gpu: capture target ready", "width", w, "height", h)
	return nil
}

// Capture encodes one render pass against the off-screen target (color
// cleared to clearColor, depth cleared to 1.0), lets record fill it with
// draws, copies the color texture into the staging buffer with the
// padded row stride, submits, and blocks until the GPU signals the
// fence. The staging rows are then read back and stripped of their
// alignment padding.
//
// Returns a tightly packed straight-alpha RGBA buffer of exactly
// width*height*4 bytes. There is exactly one in-flight readback at a
// time; captures never pipeline.
func (t *CaptureTarget) Capture(clearColor [4]float32, record func(rp hal.RenderPassEncoder)) ([]byte, error) {
	encoder, err := t.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "capture_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("capture"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "capture_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:    t.colorView,
				LoadOp:  gputypes.LoadOpClear,
				StoreOp: gputypes.StoreOpStore,
				ClearValue: gputypes.Color{
					R: float64(clearColor[0]),
					G: float64(clearColor[1]),
					B: float64(clearColor[2]),
					A: float64(clearColor[3]),
				},
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	if record != nil {
		record(rp)
	}
	rp.End()

	// The render pass leaves the color texture in attachment layout;
	// the copy engine needs it as a transfer source. No-op on backends
	// without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	paddedRow := PaddedBytesPerRow(t.width)
	encoder.CopyTextureToBuffer(t.colorTex, t.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: paddedRow, RowsPerImage: t.height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer t.device.FreeCommandBuffer(cmdBuf)

	fence, err := t.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("gpu: create fence: %w", err)
	}
	defer t.device.DestroyFence(fence)

	if err := t.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := t.device.Wait(fence, 1, fenceWaitTimeout)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("gpu: wait for capture: ok=%v err=%w", fenceOK, err)
	}

	padded := make([]byte, uint64(paddedRow)*uint64(t.height))
	if err := t.queue.ReadBuffer(t.staging, 0, padded); err != nil {
		return nil, fmt.Errorf("gpu: read staging buffer: %w", err)
	}

	// Strip the per-row alignment padding into a tight buffer.
	tightRow := int(t.width) * 4
	pixels := make([]byte, tightRow*int(t.height))
	for y := 0; y < int(t.height); y++ {
		src := y * int(paddedRow)
		dst := y * tightRow
		copy(pixels[dst:dst+tightRow], padded[src:src+tightRow])
	}
	return pixels, nil
}

func (t *CaptureTarget) destroyResources() {
	if t.staging != nil {
		t.device.DestroyBuffer(t.staging)
		t.staging = nil
	}
	if t.depthView != nil {
		t.device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depthTex != nil {
		t.device.DestroyTexture(t.depthTex)
		t.depthTex = nil
	}
	if t.colorView != nil {
		t.device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.colorTex != nil {
		t.device.DestroyTexture(t.colorTex)
		t.colorTex = nil
	}
	t.width = 0
	t.height = 0
}

// Destroy releases all target resources. Safe to call multiple times.
func (t *CaptureTarget) Destroy() {
	t.destroyResources()
}
