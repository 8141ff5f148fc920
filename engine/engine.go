package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// ErrAdapterUnavailable is returned when no GPU adapter satisfies the requested options.
	ErrAdapterUnavailable = errors.New("engine: no suitable GPU adapter")

	// ErrDeviceUnavailable is returned when the adapter refuses to create a logical device.
	ErrDeviceUnavailable = errors.New("engine: failed to create logical device")

	// ErrReleased is returned by Compute after the engine has been released.
	ErrReleased = errors.New("engine: used after release")
)

// computeEngine implements the ComputeEngine interface.
// Owns the wgpu instance, adapter, logical device and its queue for the lifetime of a run.
type computeEngine struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// requiredLimits are requested from the adapter; limits are what the device reports back.
	requiredLimits wgpu.Limits
	limits         wgpu.Limits

	logger *zap.Logger

	deviceLabel          string
	powerPreference      wgpu.PowerPreference
	forceFallbackAdapter bool

	released bool
}

// ComputeEngine hands out a ready-to-use GPU device and command queue and submits recorded work to it.
// Submission is synchronous: Compute does not return until the GPU has finished executing.
type ComputeEngine interface {
	// Instance returns the wgpu instance the adapter was requested from.
	Instance() *wgpu.Instance

	// Adapter returns the physical adapter selected for this engine.
	Adapter() *wgpu.Adapter

	// Device returns the logical device used to create all GPU resources.
	Device() *wgpu.Device

	// Queue returns the device's command queue.
	Queue() *wgpu.Queue

	// Limits returns the limits reported by the logical device once it has been created.
	//
	// Returns:
	//   - wgpu.Limits: the device's actual limits, never the unset request sentinels
	Limits() wgpu.Limits

	// PrintAPIInformation logs information about the selected adapter and device limits.
	//
	// Parameters:
	//   - level: the log level to emit the information at
	PrintAPIInformation(level zapcore.Level)

	// Compute records a single command buffer through the provided callback, submits it to the
	// queue and blocks until the GPU has finished executing it.
	//
	// Parameters:
	//   - record: records commands into the encoder; a non-nil error aborts before submission
	//
	// Returns:
	//   - error: an error if recording, encoding or submission fails
	Compute(record func(encoder *wgpu.CommandEncoder) error) error

	// Release releases the queue, device, adapter and instance. Safe to call multiple times.
	Release()
}

var _ ComputeEngine = &computeEngine{}

// NewComputeEngine creates a wgpu instance, selects an adapter and creates a logical device and queue.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (logger, adapter selection, etc.)
//
// Returns:
//   - ComputeEngine: the ready-to-use engine
//   - error: ErrAdapterUnavailable or ErrDeviceUnavailable wrapping the underlying failure
func NewComputeEngine(options ...EngineBuilderOption) (ComputeEngine, error) {
	e := &computeEngine{
		mu:              &sync.Mutex{},
		logger:          zap.NewNop(),
		deviceLabel:     "Compute Device",
		powerPreference: wgpu.PowerPreferenceHighPerformance,
		requiredLimits:  wgpu.DefaultLimits(),
	}

	for _, opt := range options {
		opt(e)
	}

	e.instance = wgpu.CreateInstance(nil)

	a, err := e.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:      e.powerPreference,
		ForceFallbackAdapter: e.forceFallbackAdapter,
	})
	if err != nil {
		e.Release()
		return nil, fmt.Errorf("%w: %w", ErrAdapterUnavailable, err)
	}
	e.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: e.deviceLabel,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: e.requiredLimits,
		},
	})
	if err != nil {
		e.Release()
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	e.device = d
	e.queue = d.GetQueue()
	e.limits = d.GetLimits().Limits

	e.logger.Debug("acquired GPU device",
		zap.String("label", e.deviceLabel),
		zap.Uint32("maxTextureDimension2D", e.limits.MaxTextureDimension2D),
		zap.Uint64("maxBufferSize", e.limits.MaxBufferSize),
	)

	return e, nil
}

func (e *computeEngine) Instance() *wgpu.Instance {
	return e.instance
}

func (e *computeEngine) Adapter() *wgpu.Adapter {
	return e.adapter
}

func (e *computeEngine) Device() *wgpu.Device {
	return e.device
}

func (e *computeEngine) Queue() *wgpu.Queue {
	return e.queue
}

func (e *computeEngine) Limits() wgpu.Limits {
	return e.limits
}

func (e *computeEngine) PrintAPIInformation(level zapcore.Level) {
	if e.adapter == nil {
		return
	}
	info := e.adapter.GetInfo()
	e.logger.Log(level, "GPU adapter",
		zap.String("name", info.Name),
		zap.String("vendor", info.VendorName),
		zap.Uint32("vendorID", info.VendorId),
		zap.Uint32("deviceID", info.DeviceId),
		zap.String("architecture", info.Architecture),
		zap.String("driver", info.DriverDescription),
		zap.Stringer("adapterType", info.AdapterType),
		zap.Stringer("backend", info.BackendType),
	)
	e.logger.Log(level, "GPU device limits",
		zap.Uint32("maxTextureDimension2D", e.limits.MaxTextureDimension2D),
		zap.Uint64("maxBufferSize", e.limits.MaxBufferSize),
		zap.Uint32("maxVertexBuffers", e.limits.MaxVertexBuffers),
		zap.Uint32("maxVertexAttributes", e.limits.MaxVertexAttributes),
	)
}

func (e *computeEngine) Compute(record func(encoder *wgpu.CommandEncoder) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released || e.device == nil {
		return ErrReleased
	}

	encoder, err := e.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "Compute Encoder",
	})
	if err != nil {
		return fmt.Errorf("engine: create command encoder: %w", err)
	}
	defer encoder.Release()

	if err := record(encoder); err != nil {
		return fmt.Errorf("engine: record commands: %w", err)
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("engine: finish command buffer: %w", err)
	}
	defer commandBuffer.Release()

	e.queue.Submit(commandBuffer)

	// Block until the queue has drained so results are visible to the caller.
	e.device.Poll(true, nil)

	return nil
}

func (e *computeEngine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		return
	}
	e.released = true

	if e.queue != nil {
		e.queue.Release()
		e.queue = nil
	}
	if e.device != nil {
		e.device.Release()
		e.device = nil
	}
	if e.adapter != nil {
		e.adapter.Release()
		e.adapter = nil
	}
	if e.instance != nil {
		e.instance.Release()
		e.instance = nil
	}
}
