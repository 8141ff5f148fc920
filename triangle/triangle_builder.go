package triangle

import (
	"github.com/Carmen-Shannon/oxy-triangle/engine"
	"go.uber.org/zap"
)

// RunOption is a functional option applied to a single Run.
type RunOption func(*runConfig)

// WithOutputPath sets the file the rendered image is written to. The extension selects the
// encoding (.png, .bmp, .tif or .tiff). An empty path keeps the default, DefaultOutputPath.
//
// Parameters:
//   - path: the output file path
//
// Returns:
//   - RunOption: option function to apply
func WithOutputPath(path string) RunOption {
	return func(c *runConfig) {
		c.outputPath = path
	}
}

// WithImageSize sets the rendered image dimensions in pixels. The width must keep each image
// row a multiple of 256 bytes, i.e. be a multiple of 64.
//
// Parameters:
//   - width: the image width in pixels
//   - height: the image height in pixels
//
// Returns:
//   - RunOption: option function to apply
func WithImageSize(width, height uint32) RunOption {
	return func(c *runConfig) {
		c.width = width
		c.height = height
	}
}

// WithLogger sets the logger shared by every stage of the run. A nil logger is ignored.
func WithLogger(logger *zap.Logger) RunOption {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEngineOptions appends options passed through to engine.NewComputeEngine, e.g. to force
// a software adapter. The run's logger is always applied first.
func WithEngineOptions(options ...engine.EngineBuilderOption) RunOption {
	return func(c *runConfig) {
		c.engineOptions = append(c.engineOptions, options...)
	}
}

// WithProfiling overrides the build default for logging stage timings.
func WithProfiling(enabled bool) RunOption {
	return func(c *runConfig) {
		c.profiling = &enabled
	}
}
