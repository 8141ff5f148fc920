package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// copyBytesPerRowAlignment is the WebGPU requirement on bytesPerRow for texture-to-buffer copies.
const copyBytesPerRowAlignment = 256

var (
	// ErrInvalidSize is returned when the target dimensions cannot be rendered and copied as one image.
	ErrInvalidSize = errors.New("renderer: invalid target size")

	// ErrResourceLimit is returned when a requested resource exceeds the device limits.
	ErrResourceLimit = errors.New("renderer: resource exceeds device limits")

	// ErrInvalidRenderPass is returned when the render pass cannot produce an RGBA8 readback.
	ErrInvalidRenderPass = errors.New("renderer: invalid render pass")

	// ErrNoVertices is returned when a vertex buffer is requested for an empty vertex list.
	ErrNoVertices = errors.New("renderer: no vertices")

	// ErrNotInitialized is returned when recording or reading back before the required resources exist.
	ErrNotInitialized = errors.New("renderer: resources not initialized")

	// ErrViewportOutOfBounds is returned when the pipeline viewport does not fit the framebuffer.
	ErrViewportOutOfBounds = errors.New("renderer: viewport exceeds framebuffer")

	// ErrMapFailed is returned when the output buffer could not be mapped for reading.
	ErrMapFailed = errors.New("renderer: failed to map output buffer")
)

// GPU is the device access the Renderer needs. engine.ComputeEngine satisfies it.
type GPU interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Limits() wgpu.Limits
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// validateTargetSize checks that a width x height RGBA8 image can be rendered on a device
// with the given limits and copied into a single tightly packed buffer.
//
// Parameters:
//   - width: the target width in pixels
//   - height: the target height in pixels
//   - limits: the limits the device was created with
//
// Returns:
//   - error: ErrInvalidSize or ErrResourceLimit wrapped with details, nil when valid
func validateTargetSize(width, height uint32, limits wgpu.Limits) error {
	if width == 0 || height == 0 {
		return wrapf(ErrInvalidSize, "%dx%d has no area", width, height)
	}
	if bytesPerRow := uint64(width) * 4; bytesPerRow%copyBytesPerRowAlignment != 0 {
		return wrapf(ErrInvalidSize, "row of %d bytes is not a multiple of %d", bytesPerRow, copyBytesPerRowAlignment)
	}
	if width > limits.MaxTextureDimension2D || height > limits.MaxTextureDimension2D {
		return wrapf(ErrResourceLimit, "%dx%d exceeds max texture dimension %d", width, height, limits.MaxTextureDimension2D)
	}
	if size := uint64(width) * uint64(height) * 4; size > limits.MaxBufferSize {
		return wrapf(ErrResourceLimit, "output buffer of %d bytes exceeds max buffer size %d", size, limits.MaxBufferSize)
	}
	return nil
}
