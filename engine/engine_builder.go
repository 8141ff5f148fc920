package engine

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring a ComputeEngine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*computeEngine)

// WithLogger sets the logger used for device diagnostics. A nil logger is ignored.
//
// Parameters:
//   - logger: the zap logger to write to
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *computeEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) EngineBuilderOption {
	return func(e *computeEngine) {
		e.forceFallbackAdapter = force
	}
}

// WithPowerPreference selects between low-power and high-performance adapters when more than one is present.
//
// Parameters:
//   - preference: the adapter power preference (default wgpu.PowerPreferenceHighPerformance)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPowerPreference(preference wgpu.PowerPreference) EngineBuilderOption {
	return func(e *computeEngine) {
		e.powerPreference = preference
	}
}

// WithDeviceLabel sets the debug label attached to the logical device.
func WithDeviceLabel(label string) EngineBuilderOption {
	return func(e *computeEngine) {
		if label != "" {
			e.deviceLabel = label
		}
	}
}
