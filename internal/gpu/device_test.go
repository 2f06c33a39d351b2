//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func TestNewDeviceFrom(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d := NewDeviceFrom(device, queue)
	if d.HAL() != device {
		t.Error("device not stored correctly")
	}
	if d.Queue() != queue {
		t.Error("queue not stored correctly")
	}
	if d.AdapterName() != "external" {
		t.Errorf("adapter name = %q, want %q", d.AdapterName(), "external")
	}

	// Close must not destroy the external handles.
	d.Close()
	d.Close()
	if d.HAL() == nil {
		t.Error("external device handle released by Close")
	}
}
