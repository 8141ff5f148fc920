package shader

import (
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// stripComments removes // line comments and (possibly nested) /* */ block comments in a
// single pass. Newlines ending line comments are kept so line structure survives.
//
// Parameters:
//   - source: raw WGSL source
//
// Returns:
//   - string: the source without comments
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))

	depth := 0
	for i := 0; i < len(source); i++ {
		switch {
		case strings.HasPrefix(source[i:], "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(source[i:], "*/"):
			depth--
			i++
		case depth > 0:
		case strings.HasPrefix(source[i:], "//"):
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// vertexBufferLayout packs the members of a vertex input struct tightly, in declaration
// order, into one per-vertex buffer layout.
//
// Parameters:
//   - s: a struct for which isVertexInput is true
//
// Returns:
//   - wgpu.VertexBufferLayout: the interleaved layout
//   - bool: false if a member type has no float32 vertex format
func vertexBufferLayout(s wgslStruct) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{
		StepMode:   wgpu.VertexStepModeVertex,
		Attributes: make([]wgpu.VertexAttribute, 0, len(s.members)),
	}
	for _, m := range s.members {
		vf, ok := float32VertexFormats[m.wgslType]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         vf.format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(m.location),
		})
		layout.ArrayStride += vf.size
	}
	return layout, true
}
