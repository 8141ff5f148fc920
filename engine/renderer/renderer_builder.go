package renderer

import (
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithSize sets the render target dimensions in pixels. Both the framebuffer and the output
// buffer are created at this size. Validation is deferred to the Init* methods.
//
// Parameters:
//   - width: the target width in pixels; width*4 must be a multiple of 256
//   - height: the target height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSize(width, height uint32) RendererBuilderOption {
	return func(r *renderer) {
		r.width = width
		r.height = height
	}
}

// WithRenderPass replaces the default render pass configuration of the colour attachment.
//
// Parameters:
//   - rp: the render pass configuration to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the render pass option to a renderer
func WithRenderPass(rp RenderPass) RendererBuilderOption {
	return func(r *renderer) {
		r.renderPass = rp
	}
}

// WithLogger sets the logger used for resource creation diagnostics. A nil logger is ignored.
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
