package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend for headless rendering.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device acquisition errors. Setup failures are unrecoverable from the
// renderer's point of view: they signal an environment or driver problem.
var (
	ErrNoBackend = errors.New("gpu: no backend available")
	ErrNoAdapter = errors.New("gpu: no compatible adapter found")
)

// Device bundles the hal objects needed by the pipelines: the instance
// that owns the adapter, and the opened device/queue pair. A Device is
// exclusively owned by one caller context; all renderer and capture
// operations are issued from a single thread.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	adapterName string
	adapterType gputypes.DeviceType
}

// NewDevice acquires a GPU context with no presentable surface
// requirement: backend, instance, adapter (discrete preferred, then
// integrated, then whatever enumerates first), and an opened device.
func NewDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not registered", ErrNoBackend)
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	selected := adapters[0]
	for _, a := range adapters {
		if a.Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = a
			break
		}
		if a.Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = a
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open adapter %q: %w", selected.Info.Name, err)
	}

	slogger().Info("gpu: adapter selected",
		"name", selected.Info.Name,
		"type", selected.Info.DeviceType)

	return &Device{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
		adapterType: selected.Info.DeviceType,
	}, nil
}

// NewDeviceFrom wraps an externally owned hal device/queue pair, for
// tests (noop backend) and host applications that already hold a device.
// Close on the returned Device releases nothing.
func NewDeviceFrom(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue, adapterName: "external"}
}

// HAL returns the underlying device handle.
func (d *Device) HAL() hal.Device { return d.device }

// Queue returns the underlying queue handle.
func (d *Device) Queue() hal.Queue { return d.queue }

// AdapterName returns the name of the selected adapter.
func (d *Device) AdapterName() string { return d.adapterName }

// Close releases the device and the owning instance. Safe to call on a
// Device created by NewDeviceFrom, where both handles stay external.
func (d *Device) Close() {
	if d.instance == nil {
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	d.instance.Destroy()
	d.instance = nil
}
