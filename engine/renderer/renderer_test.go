package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

const vertexSource = `
struct VertexInput {
    @location(0) position: vec2<f32>,
};

@vertex
fn main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 0.0, 1.0);
}
`

const fragmentSource = `
@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

// fakeGPU satisfies GPU without a device. Only paths that fail validation may be exercised with it.
type fakeGPU struct {
	limits wgpu.Limits
}

func (f fakeGPU) Device() *wgpu.Device { return nil }
func (f fakeGPU) Queue() *wgpu.Queue   { return nil }
func (f fakeGPU) Limits() wgpu.Limits  { return f.limits }

// newFakeGPU reports the limits of a typical device: 8192 texels per side and 256 MiB buffers.
func newFakeGPU() fakeGPU {
	limits := wgpu.DefaultLimits()
	limits.MaxTextureDimension2D = 8192
	limits.MaxBufferSize = 256 << 20
	return fakeGPU{limits: limits}
}

func newTestEngine(t *testing.T) engine.ComputeEngine {
	t.Helper()
	e, err := engine.NewComputeEngine()
	if err != nil {
		if errors.Is(err, engine.ErrAdapterUnavailable) || errors.Is(err, engine.ErrDeviceUnavailable) {
			t.Skipf("no GPU available: %v", err)
		}
		t.Fatalf("NewComputeEngine: %v", err)
	}
	t.Cleanup(e.Release)
	return e
}

func newTestPipeline(t *testing.T, viewport common.Viewport) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShaderFromSource("vs", shader.ShaderTypeVertex, vertexSource)
	if err != nil {
		t.Fatalf("vertex shader: %v", err)
	}
	fs, err := shader.NewShaderFromSource("fs", shader.ShaderTypeFragment, fragmentSource)
	if err != nil {
		t.Fatalf("fragment shader: %v", err)
	}
	return pipeline.NewPipeline("triangle",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithViewport(viewport),
	)
}

func TestNewRendererDefaults(t *testing.T) {
	r := NewRenderer(newFakeGPU())

	w, h := r.Size()
	if w != common.DefaultImageWidth || h != common.DefaultImageHeight {
		t.Errorf("expected %dx%d, got %dx%d", common.DefaultImageWidth, common.DefaultImageHeight, w, h)
	}
	if diff := cmp.Diff(DefaultRenderPass(), r.RenderPass()); diff != "" {
		t.Errorf("render pass mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(common.NewViewport(w, h), r.Viewport()); diff != "" {
		t.Errorf("viewport mismatch (-want +got):\n%s", diff)
	}
	if r.Framebuffer() != nil {
		t.Error("expected no framebuffer before InitFramebuffer")
	}
}

func TestRendererBuilderOptions(t *testing.T) {
	rp := DefaultRenderPass()
	rp.ClearColor = wgpu.Color{R: 1, A: 1}
	logger := zap.NewExample()

	r := NewRenderer(newFakeGPU(),
		WithSize(256, 128),
		WithRenderPass(rp),
		WithLogger(logger),
		WithLogger(nil),
	).(*renderer)

	if r.width != 256 || r.height != 128 {
		t.Errorf("expected 256x128, got %dx%d", r.width, r.height)
	}
	if r.renderPass.ClearColor != rp.ClearColor {
		t.Errorf("expected clear color %v, got %v", rp.ClearColor, r.renderPass.ClearColor)
	}
	if r.logger != logger {
		t.Error("nil logger should not replace the configured logger")
	}
}

func TestDefaultRenderPass(t *testing.T) {
	rp := DefaultRenderPass()
	if err := rp.Validate(); err != nil {
		t.Fatalf("default render pass should be valid: %v", err)
	}
	if rp.LoadOp != wgpu.LoadOpClear {
		t.Errorf("expected clear on load, got %v", rp.LoadOp)
	}
	if rp.ClearColor != common.ClearColor {
		t.Errorf("expected clear color %v, got %v", common.ClearColor, rp.ClearColor)
	}
}

func TestRenderPassValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RenderPass)
	}{
		{"bgra format", func(rp *RenderPass) { rp.Format = wgpu.TextureFormatBGRA8Unorm }},
		{"multisampled", func(rp *RenderPass) { rp.SampleCount = 4 }},
		{"zero samples", func(rp *RenderPass) { rp.SampleCount = 0 }},
		{"discarded", func(rp *RenderPass) { rp.StoreOp = wgpu.StoreOpDiscard }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp := DefaultRenderPass()
			tt.mutate(&rp)
			if err := rp.Validate(); !errors.Is(err, ErrInvalidRenderPass) {
				t.Errorf("expected ErrInvalidRenderPass, got %v", err)
			}
		})
	}
}

func TestRenderPassDescriptor(t *testing.T) {
	d := DefaultRenderPass().descriptor(nil)
	if len(d.ColorAttachments) != 1 {
		t.Fatalf("expected one colour attachment, got %d", len(d.ColorAttachments))
	}
	a := d.ColorAttachments[0]
	if a.LoadOp != wgpu.LoadOpClear || a.StoreOp != wgpu.StoreOpStore {
		t.Errorf("unexpected load/store ops %v/%v", a.LoadOp, a.StoreOp)
	}
	if a.ClearValue != common.ClearColor {
		t.Errorf("expected clear value %v, got %v", common.ClearColor, a.ClearValue)
	}
}

func TestValidateTargetSize(t *testing.T) {
	limits := wgpu.DefaultLimits()
	limits.MaxTextureDimension2D = 8192
	limits.MaxBufferSize = 64 << 20

	tests := []struct {
		name          string
		width, height uint32
		want          error
	}{
		{"default", 1024, 1024, nil},
		{"narrowest aligned", 64, 1, nil},
		{"zero width", 0, 1024, ErrInvalidSize},
		{"zero height", 1024, 0, ErrInvalidSize},
		{"unaligned row", 100, 100, ErrInvalidSize},
		{"too wide", 16384, 64, ErrResourceLimit},
		{"too tall", 64, 16384, ErrResourceLimit},
		{"buffer at limit", 4096, 4096, nil},
		{"buffer too large", 8192, 4096, ErrResourceLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTargetSize(tt.width, tt.height, limits)
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckViewport(t *testing.T) {
	tests := []struct {
		name string
		vp   common.Viewport
		ok   bool
	}{
		{"full target", common.NewViewport(1024, 1024), true},
		{"inset", common.Viewport{X: 10, Y: 10, Width: 100, Height: 100, MaxDepth: 1}, true},
		{"negative origin", common.Viewport{X: -1, Width: 100, Height: 100, MaxDepth: 1}, false},
		{"too wide", common.Viewport{Width: 1025, Height: 1024, MaxDepth: 1}, false},
		{"empty", common.Viewport{Width: 0, Height: 1024, MaxDepth: 1}, false},
		{"inverted depth", common.Viewport{Width: 1024, Height: 1024, MinDepth: 1, MaxDepth: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkViewport(tt.vp, 1024, 1024)
			if tt.ok && err != nil {
				t.Errorf("expected viewport to fit, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrViewportOutOfBounds) {
				t.Errorf("expected ErrViewportOutOfBounds, got %v", err)
			}
		})
	}
}

func TestValidateTargetSizeUsesReportedLimits(t *testing.T) {
	limits := newFakeGPU().Limits()

	err := validateTargetSize(16384, 16384, limits)
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("16384x16384: expected ErrResourceLimit, got %v", err)
	}
	// 8192x8192 needs exactly the 256 MiB buffer limit.
	if err := validateTargetSize(8192, 8192, limits); err != nil {
		t.Errorf("8192x8192: expected no error, got %v", err)
	}
	if err := validateTargetSize(8192, 8193, limits); !errors.Is(err, ErrResourceLimit) {
		t.Errorf("8192x8193: expected ErrResourceLimit, got %v", err)
	}
}

func TestValidateTargetSizeOnDevice(t *testing.T) {
	e := newTestEngine(t)
	limits := e.Limits()

	tooWide := (limits.MaxTextureDimension2D/64 + 1) * 64
	if err := validateTargetSize(tooWide, 64, limits); !errors.Is(err, ErrResourceLimit) {
		t.Errorf("%dx64: expected ErrResourceLimit, got %v", tooWide, err)
	}

	r := NewRenderer(e, WithSize(tooWide, 64))
	t.Cleanup(r.Release)
	if err := r.InitOutputBuffer(); !errors.Is(err, ErrResourceLimit) {
		t.Errorf("InitOutputBuffer: expected ErrResourceLimit, got %v", err)
	}
}

func TestInitFailsBeforeAllocation(t *testing.T) {
	r := NewRenderer(newFakeGPU(), WithSize(100, 100))
	if err := r.InitOutputBuffer(); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("InitOutputBuffer: expected ErrInvalidSize, got %v", err)
	}
	if err := r.InitFramebuffer(); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("InitFramebuffer: expected ErrInvalidSize, got %v", err)
	}

	rp := DefaultRenderPass()
	rp.SampleCount = 4
	r = NewRenderer(newFakeGPU(), WithRenderPass(rp))
	if err := r.InitFramebuffer(); !errors.Is(err, ErrInvalidRenderPass) {
		t.Errorf("InitFramebuffer: expected ErrInvalidRenderPass, got %v", err)
	}

	r = NewRenderer(newFakeGPU(), WithSize(16384, 16384))
	if err := r.InitOutputBuffer(); !errors.Is(err, ErrResourceLimit) {
		t.Errorf("InitOutputBuffer: expected ErrResourceLimit, got %v", err)
	}
}

func TestInitVertexBufferRejectsEmpty(t *testing.T) {
	r := NewRenderer(newFakeGPU())
	if err := r.InitVertexBuffer(nil); !errors.Is(err, ErrNoVertices) {
		t.Errorf("expected ErrNoVertices, got %v", err)
	}
}

func TestRecordDrawRequiresResources(t *testing.T) {
	r := NewRenderer(newFakeGPU())
	p := pipeline.NewPipeline("triangle")

	if err := r.RecordDraw(nil, p); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := r.ReadOutput(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestRenderTriangle(t *testing.T) {
	e := newTestEngine(t)
	const size = 256

	r := NewRenderer(e, WithSize(size, size))
	t.Cleanup(r.Release)

	if err := r.InitVertexBuffer(common.TriangleVertices[:]); err != nil {
		t.Fatalf("InitVertexBuffer: %v", err)
	}
	if err := r.InitOutputBuffer(); err != nil {
		t.Fatalf("InitOutputBuffer: %v", err)
	}
	if err := r.InitFramebuffer(); err != nil {
		t.Fatalf("InitFramebuffer: %v", err)
	}
	if w, h := r.Framebuffer().Size(); w != size || h != size {
		t.Errorf("expected %dx%d framebuffer, got %dx%d", size, size, w, h)
	}

	p := newTestPipeline(t, r.Viewport())
	t.Cleanup(p.Release)
	if err := r.RegisterRenderPipeline(p); err != nil {
		t.Fatalf("RegisterRenderPipeline: %v", err)
	}

	if err := e.Compute(func(enc *wgpu.CommandEncoder) error {
		return r.RecordDraw(enc, p)
	}); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	out, err := r.ReadOutput()
	if err != nil {
		t.Fatalf("ReadOutput: %v", err)
	}
	if len(out) != size*size*common.ImageChannels {
		t.Fatalf("expected %d bytes, got %d", size*size*common.ImageChannels, len(out))
	}

	pixel := func(x, y int) [4]byte {
		i := (y*size + x) * common.ImageChannels
		return [4]byte{out[i], out[i+1], out[i+2], out[i+3]}
	}
	blue := [4]byte{0, 0, 255, 255}
	red := [4]byte{255, 0, 0, 255}

	if got := pixel(0, 0); got != blue {
		t.Errorf("top-left corner: expected %v, got %v", blue, got)
	}
	if got := pixel(size-1, size-1); got != blue {
		t.Errorf("bottom-right corner: expected %v, got %v", blue, got)
	}
	// Centroid of the triangle, (0, -1/12) in NDC.
	if got := pixel(size/2, size*13/24); got != red {
		t.Errorf("centroid: expected %v, got %v", red, got)
	}
}

func TestRecordDrawRejectsOversizedViewport(t *testing.T) {
	e := newTestEngine(t)

	r := NewRenderer(e, WithSize(256, 256))
	t.Cleanup(r.Release)
	for _, init := range []func() error{
		func() error { return r.InitVertexBuffer(common.TriangleVertices[:]) },
		r.InitOutputBuffer,
		r.InitFramebuffer,
	} {
		if err := init(); err != nil {
			t.Fatalf("init: %v", err)
		}
	}

	p := newTestPipeline(t, common.NewViewport(512, 512))
	t.Cleanup(p.Release)
	if err := r.RegisterRenderPipeline(p); err != nil {
		t.Fatalf("RegisterRenderPipeline: %v", err)
	}

	err := e.Compute(func(enc *wgpu.CommandEncoder) error {
		return r.RecordDraw(enc, p)
	})
	if !errors.Is(err, ErrViewportOutOfBounds) {
		t.Errorf("expected ErrViewportOutOfBounds, got %v", err)
	}
}
