package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormat pairs a vertex attribute format with the bytes one attribute occupies in a buffer.
type vertexFormat struct {
	format wgpu.VertexFormat
	size   uint64
}

// structMember is one member of a WGSL struct and the IO attributes decorating it.
type structMember struct {
	name     string
	wgslType string
	// location is the @location index, or -1 when the member has none.
	location int
	// builtin names the @builtin value, e.g. "position"; empty when absent.
	builtin string
}

type wgslStruct struct {
	name    string
	members []structMember
}

// isVertexInput reports whether every member is fed from a vertex buffer: at least one
// member carries @location and none is a @builtin.
func (s wgslStruct) isVertexInput() bool {
	if len(s.members) == 0 {
		return false
	}
	for _, m := range s.members {
		if m.builtin != "" || m.location < 0 {
			return false
		}
	}
	return true
}
