package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend

	logger *zap.Logger
	limits wgpu.Limits

	width, height uint32
	renderPass    RenderPass

	vertexCount int
	outputReady bool
	framebuffer *Framebuffer
}

// Renderer owns the GPU resources for rendering one image off-screen: the vertex buffer, the
// render target and its framebuffer, the CPU-readable output buffer and the render pipeline.
//
// All resources are created once, used for a single submission and released together.
// Size and render pass validation happen before any GPU allocation so that a bad
// configuration never reaches command recording.
type Renderer interface {
	// Size returns the render target dimensions in pixels.
	Size() (width, height uint32)

	// RenderPass returns the render pass configuration of the colour attachment.
	RenderPass() RenderPass

	// Viewport returns a viewport covering the whole render target.
	Viewport() common.Viewport

	// InitVertexBuffer uploads the vertices into a GPU-resident vertex buffer bound at slot 0.
	//
	// Parameters:
	//   - vertices: the vertices to draw, in order
	//
	// Returns:
	//   - error: ErrNoVertices, or an error if the buffer could not be created
	InitVertexBuffer(vertices []common.Vertex) error

	// InitOutputBuffer creates the CPU-readable output buffer, width*height*4 bytes in size.
	//
	// Returns:
	//   - error: ErrInvalidSize, ErrResourceLimit, or an error if the buffer could not be created
	InitOutputBuffer() error

	// InitFramebuffer creates the render target image and its view, and binds the view to
	// the render pass's colour attachment.
	//
	// Returns:
	//   - error: ErrInvalidRenderPass, ErrInvalidSize, ErrResourceLimit, or a creation error
	InitFramebuffer() error

	// Framebuffer returns the framebuffer created by InitFramebuffer, or nil.
	Framebuffer() *Framebuffer

	// RegisterRenderPipeline creates the GPU pipeline object for p and stores it on p.
	//
	// Parameters:
	//   - p: the pipeline configuration to create
	//
	// Returns:
	//   - error: a pipeline validation error, or an error if creation fails
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RecordDraw records, in order: begin the render pass (clearing the target), bind the
	// pipeline, set the viewport, bind the vertex buffer at slot 0, draw every vertex as one
	// instance, end the render pass, and copy the target into the output buffer.
	//
	// Parameters:
	//   - encoder: the command encoder to record into
	//   - p: a pipeline previously passed to RegisterRenderPipeline
	//
	// Returns:
	//   - error: ErrNotInitialized or ErrViewportOutOfBounds; nothing is recorded on error
	RecordDraw(encoder *wgpu.CommandEncoder, p pipeline.Pipeline) error

	// ReadOutput returns a copy of the output buffer. The submission that recorded the copy
	// must have completed.
	//
	// Returns:
	//   - []byte: width*height*4 bytes of RGBA8 pixel data, row-major, top row first
	//   - error: ErrNotInitialized or ErrMapFailed
	ReadOutput() ([]byte, error)

	// Release releases every GPU resource owned by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing with the device and queue of gpu.
// No GPU resources are created until the Init* methods are called.
//
// Parameters:
//   - gpu: the device access, typically an engine.ComputeEngine
//   - options: functional options for target size, render pass and logging
//
// Returns:
//   - Renderer: the newly created renderer
func NewRenderer(gpu GPU, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		backendType: BackendTypeWGPU,
		logger:      zap.NewNop(),
		limits:      gpu.Limits(),
		width:       common.DefaultImageWidth,
		height:      common.DefaultImageHeight,
		renderPass:  DefaultRenderPass(),
	}
	for _, opt := range options {
		opt(r)
	}

	// WebGPU is the only backend.
	r.backend = newWGPURendererBackend(gpu.Device(), gpu.Queue())

	return r
}

func (r *renderer) Size() (uint32, uint32) {
	return r.width, r.height
}

func (r *renderer) RenderPass() RenderPass {
	return r.renderPass
}

func (r *renderer) Viewport() common.Viewport {
	return common.NewViewport(r.width, r.height)
}

func (r *renderer) InitVertexBuffer(vertices []common.Vertex) error {
	if len(vertices) == 0 {
		return ErrNoVertices
	}
	if err := r.backend.CreateVertexBuffer("Vertex Buffer", vertices); err != nil {
		return fmt.Errorf("renderer: create vertex buffer: %w", err)
	}
	r.vertexCount = len(vertices)
	r.logger.Debug("created vertex buffer", zap.Int("vertices", len(vertices)))
	return nil
}

func (r *renderer) InitOutputBuffer() error {
	if err := validateTargetSize(r.width, r.height, r.limits); err != nil {
		return err
	}
	size := common.OutputSize(r.width, r.height)
	if err := r.backend.CreateOutputBuffer("Output Buffer", size); err != nil {
		return fmt.Errorf("renderer: create output buffer: %w", err)
	}
	r.outputReady = true
	r.logger.Debug("created output buffer", zap.Uint64("bytes", size))
	return nil
}

func (r *renderer) InitFramebuffer() error {
	if err := r.renderPass.Validate(); err != nil {
		return err
	}
	if err := validateTargetSize(r.width, r.height, r.limits); err != nil {
		return err
	}
	fb, err := r.backend.CreateFramebuffer(r.width, r.height, r.renderPass)
	if err != nil {
		return fmt.Errorf("renderer: create framebuffer: %w", err)
	}
	r.framebuffer = fb
	r.logger.Debug("created framebuffer",
		zap.Uint32("width", r.width),
		zap.Uint32("height", r.height),
		zap.Stringer("format", r.renderPass.Format),
	)
	return nil
}

func (r *renderer) Framebuffer() *Framebuffer {
	return r.framebuffer
}

func (r *renderer) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := r.renderPass.Validate(); err != nil {
		return err
	}
	if err := r.backend.CreateRenderPipeline(p, r.renderPass); err != nil {
		return fmt.Errorf("renderer: create render pipeline %q: %w", p.PipelineKey(), err)
	}
	r.logger.Debug("registered render pipeline", zap.String("pipeline", p.PipelineKey()))
	return nil
}

func (r *renderer) RecordDraw(encoder *wgpu.CommandEncoder, p pipeline.Pipeline) error {
	switch {
	case r.vertexCount == 0:
		return fmt.Errorf("%w: vertex buffer", ErrNotInitialized)
	case !r.outputReady:
		return fmt.Errorf("%w: output buffer", ErrNotInitialized)
	case r.framebuffer == nil:
		return fmt.Errorf("%w: framebuffer", ErrNotInitialized)
	case p.RenderPipeline() == nil:
		return fmt.Errorf("%w: pipeline %q is not registered", ErrNotInitialized, p.PipelineKey())
	}
	if err := checkViewport(p.Viewport(), r.width, r.height); err != nil {
		return err
	}

	r.backend.EncodeDraw(encoder, p)
	return nil
}

func (r *renderer) ReadOutput() ([]byte, error) {
	if !r.outputReady {
		return nil, fmt.Errorf("%w: output buffer", ErrNotInitialized)
	}
	return r.backend.ReadOutput()
}

func (r *renderer) Release() {
	r.backend.Release()
	r.vertexCount = 0
	r.outputReady = false
	r.framebuffer = nil
}

// checkViewport reports whether vp lies within a width x height framebuffer.
func checkViewport(vp common.Viewport, width, height uint32) error {
	if vp.X < 0 || vp.Y < 0 || vp.Width <= 0 || vp.Height <= 0 ||
		vp.X+vp.Width > float32(width) || vp.Y+vp.Height > float32(height) {
		return fmt.Errorf("%w: %+v in %dx%d", ErrViewportOutOfBounds, vp, width, height)
	}
	if vp.MinDepth < 0 || vp.MaxDepth > 1 || vp.MinDepth > vp.MaxDepth {
		return fmt.Errorf("%w: depth range %v..%v", ErrViewportOutOfBounds, vp.MinDepth, vp.MaxDepth)
	}
	return nil
}

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}
