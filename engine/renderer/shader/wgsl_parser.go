package shader

import (
	"regexp"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
)

// float32VertexFormats maps the WGSL float32 scalar and vector types, in both spellings, to
// their vertex formats. Vertex data is always uploaded as float32.
var float32VertexFormats = map[string]vertexFormat{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
}

var (
	structRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// memberRegex captures a member's attribute run, its name and its type. Types stop at a
	// comma, so parameterised types such as array<T, N> come out truncated and unmapped.
	memberRegex = regexp.MustCompile(`((?:@\w+\s*\([^)]*\)\s*)*)(\w+)\s*:\s*([\w<>]+)`)

	locationRegex = regexp.MustCompile(`@location\s*\(\s*(\d+)\s*\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\s*\(\s*(\w+)\s*\)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
)

// parseVertexLayouts extracts vertex buffer layouts from WGSL source code.
// Every struct whose members all carry @location becomes one buffer slot, in declaration order.
// Structs with a @builtin member or a non-float32 member type are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []wgpu.VertexBufferLayout: vertex layouts indexed by vertex buffer slot
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	var result []wgpu.VertexBufferLayout
	for _, st := range parseStructs(stripComments(source)) {
		if !st.isVertexInput() {
			continue
		}
		layout, ok := vertexBufferLayout(st)
		if !ok {
			continue
		}
		result = append(result, layout)
	}
	return result
}

// parseEntryPoint extracts the entry point function name for the given shader type
// from WGSL source. Returns an empty string if no matching entry point annotation is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - shaderType: the shader type to search for (ShaderTypeVertex or ShaderTypeFragment)
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseStructs extracts every struct declaration and its members from comment-free WGSL.
func parseStructs(source string) []wgslStruct {
	matches := structRegex.FindAllStringSubmatch(source, -1)
	structs := make([]wgslStruct, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, wgslStruct{
			name:    m[1],
			members: parseMembers(m[2]),
		})
	}
	return structs
}

func parseMembers(body string) []structMember {
	matches := memberRegex.FindAllStringSubmatch(body, -1)
	members := make([]structMember, 0, len(matches))
	for _, m := range matches {
		member := structMember{
			name:     m[2],
			wgslType: m[3],
			location: -1,
		}
		if loc := locationRegex.FindStringSubmatch(m[1]); loc != nil {
			if n, err := strconv.Atoi(loc[1]); err == nil {
				member.location = n
			}
		}
		if b := builtinRegex.FindStringSubmatch(m[1]); b != nil {
			member.builtin = b[1]
		}
		members = append(members, member)
	}
	return members
}
