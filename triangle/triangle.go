// Package triangle renders a single red triangle on a blue background off-screen and saves
// the result as an image file.
package triangle

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine"
	"github.com/Carmen-Shannon/oxy-triangle/engine/profiler"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-triangle/imageio"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultOutputPath is the file written when no output path is given, relative to the working directory.
const DefaultOutputPath = "triangle.png"

const (
	vertexShaderPath   = "shaders/triangle.vert.wgsl"
	fragmentShaderPath = "shaders/triangle.frag.wgsl"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

type runConfig struct {
	outputPath    string
	width, height uint32
	logger        *zap.Logger
	engineOptions []engine.EngineBuilderOption
	profiling     *bool
}

func (c *runConfig) validate() error {
	if _, err := imageio.EncoderFor(c.outputPath); err != nil {
		return fmt.Errorf("triangle: output path %q: %w", c.outputPath, err)
	}
	return nil
}

// Run acquires a GPU, renders the triangle into an off-screen target, copies the result back
// to the CPU and writes it to the output path. Every GPU resource is released before Run
// returns. The first failure aborts the run and is returned wrapped; in that case no image
// is written.
//
// Parameters:
//   - options: functional options for output path, image size, logging and adapter selection
//
// Returns:
//   - error: the first error encountered, nil once the image has been saved
func Run(options ...RunOption) error {
	cfg := &runConfig{
		width:  common.DefaultImageWidth,
		height: common.DefaultImageHeight,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(cfg)
	}
	cfg.outputPath = common.Coalesce(cfg.outputPath, DefaultOutputPath)
	if err := cfg.validate(); err != nil {
		return err
	}

	logger := cfg.logger
	profilerOptions := []profiler.ProfilerBuilderOption{profiler.WithLogger(logger)}
	if cfg.profiling != nil {
		profilerOptions = append(profilerOptions, profiler.WithEnabled(*cfg.profiling))
	}
	prof := profiler.NewProfiler(profilerOptions...)

	engineOptions := append([]engine.EngineBuilderOption{engine.WithLogger(logger)}, cfg.engineOptions...)
	e, err := engine.NewComputeEngine(engineOptions...)
	if err != nil {
		return fmt.Errorf("triangle: acquire GPU: %w", err)
	}
	defer e.Release()
	e.PrintAPIInformation(zapcore.InfoLevel)

	r := renderer.NewRenderer(e,
		renderer.WithSize(cfg.width, cfg.height),
		renderer.WithLogger(logger),
	)
	defer r.Release()

	if err := r.InitVertexBuffer(common.TriangleVertices[:]); err != nil {
		return fmt.Errorf("triangle: %w", err)
	}
	if err := r.InitOutputBuffer(); err != nil {
		return fmt.Errorf("triangle: %w", err)
	}

	vs, err := shader.NewShader("triangle.vert", shader.ShaderTypeVertex, shaderFS, vertexShaderPath)
	if err != nil {
		return fmt.Errorf("triangle: load vertex shader: %w", err)
	}
	fs, err := shader.NewShader("triangle.frag", shader.ShaderTypeFragment, shaderFS, fragmentShaderPath)
	if err != nil {
		return fmt.Errorf("triangle: load fragment shader: %w", err)
	}

	if err := r.InitFramebuffer(); err != nil {
		return fmt.Errorf("triangle: %w", err)
	}

	p := pipeline.NewPipeline("triangle",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithViewport(r.Viewport()),
	)
	defer p.Release()
	if err := r.RegisterRenderPipeline(p); err != nil {
		return fmt.Errorf("triangle: %w", err)
	}

	if err := prof.Measure("Rendering", func() error {
		return e.Compute(func(encoder *wgpu.CommandEncoder) error {
			return r.RecordDraw(encoder, p)
		})
	}); err != nil {
		return fmt.Errorf("triangle: render: %w", err)
	}

	if err := prof.Measure("Storing image", func() error {
		buf, err := r.ReadOutput()
		if err != nil {
			return err
		}
		img, err := imageio.FromRGBA(buf, int(cfg.width), int(cfg.height))
		if err != nil {
			return err
		}
		return imageio.WriteFile(cfg.outputPath, img)
	}); err != nil {
		return fmt.Errorf("triangle: store image: %w", err)
	}

	logger.Info("Successfully saved image", zap.String("path", cfg.outputPath))
	return nil
}
