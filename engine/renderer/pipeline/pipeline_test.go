package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
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

func mustShader(t *testing.T, key string, shaderType shader.ShaderType, source string) shader.Shader {
	t.Helper()
	s, err := shader.NewShaderFromSource(key, shaderType, source)
	if err != nil {
		t.Fatalf("NewShaderFromSource(%s): %v", key, err)
	}
	return s
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("triangle")

	if p.PipelineKey() != "triangle" {
		t.Errorf("expected key triangle, got %q", p.PipelineKey())
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("expected triangle list topology, got %v", p.Topology())
	}
	if p.FrontFace() != wgpu.FrontFaceCCW {
		t.Errorf("expected CCW front face, got %v", p.FrontFace())
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Errorf("expected no culling, got %v", p.CullMode())
	}
	if p.WriteMask() != wgpu.ColorWriteMaskAll {
		t.Errorf("expected all channels written, got %v", p.WriteMask())
	}
	if p.BlendState() != nil {
		t.Error("expected blending disabled by default")
	}
	if p.Viewport() != common.NewViewport(1024, 1024) {
		t.Errorf("expected full 1024x1024 viewport, got %+v", p.Viewport())
	}
	if p.RenderPipeline() != nil {
		t.Error("expected no GPU pipeline before registration")
	}
}

func TestPipelineBuilderOptions(t *testing.T) {
	vs := mustShader(t, "vs", shader.ShaderTypeVertex, vertexSource)
	fs := mustShader(t, "fs", shader.ShaderTypeFragment, fragmentSource)
	blend := &wgpu.BlendState{
		Color: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorZero},
		Alpha: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorZero},
	}

	p := NewPipeline("custom",
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithFrontFace(wgpu.FrontFaceCW),
		WithCullMode(wgpu.CullModeBack),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithBlendState(blend),
		WithViewport(common.NewViewport(256, 128)),
	)

	if p.Shader(shader.ShaderTypeVertex) != vs || p.Shader(shader.ShaderTypeFragment) != fs {
		t.Error("expected shaders to be bound to their stages")
	}
	if p.Shader(shader.ShaderType(9)) != nil {
		t.Error("expected nil for an unknown shader type")
	}
	if p.Topology() != wgpu.PrimitiveTopologyLineList {
		t.Errorf("unexpected topology %v", p.Topology())
	}
	if p.FrontFace() != wgpu.FrontFaceCW {
		t.Errorf("unexpected front face %v", p.FrontFace())
	}
	if p.CullMode() != wgpu.CullModeBack {
		t.Errorf("unexpected cull mode %v", p.CullMode())
	}
	if p.WriteMask() != wgpu.ColorWriteMaskRed {
		t.Errorf("unexpected write mask %v", p.WriteMask())
	}
	if p.BlendState() != blend {
		t.Error("expected blend state to be set")
	}
	if p.Viewport().Width != 256 || p.Viewport().Height != 128 {
		t.Errorf("unexpected viewport %+v", p.Viewport())
	}
	if err := p.Validate(); err != nil {
		t.Errorf("expected valid pipeline, got %v", err)
	}
}

func TestPipelineValidate(t *testing.T) {
	vs := mustShader(t, "vs", shader.ShaderTypeVertex, vertexSource)
	fs := mustShader(t, "fs", shader.ShaderTypeFragment, fragmentSource)

	tests := []struct {
		name string
		opts []PipelineBuilderOption
		want error
	}{
		{"no shaders", nil, ErrMissingShader},
		{"no fragment", []PipelineBuilderOption{WithVertexShader(vs)}, ErrMissingShader},
		{"swapped", []PipelineBuilderOption{WithVertexShader(fs), WithFragmentShader(vs)}, ErrWrongShaderStage},
		{"empty viewport", []PipelineBuilderOption{WithVertexShader(vs), WithFragmentShader(fs), WithViewport(common.Viewport{})}, ErrInvalidViewport},
		{"valid", []PipelineBuilderOption{WithVertexShader(vs), WithFragmentShader(fs)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPipeline(tt.name, tt.opts...).Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReleaseWithoutGPUObject(t *testing.T) {
	p := NewPipeline("unregistered")
	p.Release()
	p.Release()
}
