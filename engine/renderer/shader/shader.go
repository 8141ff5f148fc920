package shader

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

// ShaderType identifies which render pipeline stage a shader belongs to.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// String returns the WGSL stage attribute name for the shader type.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

var (
	// ErrCompile is returned when the WGSL source fails to compile.
	ErrCompile = errors.New("shader: compilation failed")

	// ErrMissingEntryPoint is returned when the source has no entry point for the shader's stage.
	ErrMissingEntryPoint = errors.New("shader: missing entry point")
)

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation.
type shader struct {
	key           string
	source        string
	shaderType    ShaderType
	vertexLayouts []wgpu.VertexBufferLayout
	entryPoint    string
	spirv         []byte
	module        *wgpu.ShaderModuleDescriptor
}

// Shader defines the interface for a loaded, compiled WGSL shader. It exposes the shader's
// unique key, source code, entry point and vertex buffer layouts needed for pipeline creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the pipeline stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// VertexLayouts retrieves the vertex buffer layouts declared by a vertex shader's input structs,
	// indexed by vertex buffer slot. Fragment shaders return nil.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// SPIRV returns the SPIR-V binary produced when the shader was compiled.
	SPIRV() []byte

	// Module returns the wgpu.ShaderModuleDescriptor used to create the GPU shader module.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader reads WGSL source from fsys and builds a compiled Shader from it.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - shaderType: the pipeline stage of the shader
//   - fsys: the file system to read from (typically an embed.FS of shader assets)
//   - path: the path of the WGSL file within fsys
//
// Returns:
//   - Shader: the compiled shader
//   - error: a read error, ErrCompile or ErrMissingEntryPoint
func NewShader(key string, shaderType ShaderType, fsys fs.FS, path string) (Shader, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read source file %q: %w", path, err)
	}
	return NewShaderFromSource(key, shaderType, string(data))
}

// NewShaderFromSource builds a compiled Shader from in-memory WGSL source.
// The source is compiled to SPIR-V up front so that invalid shaders fail before any GPU
// object is created. The entry point for the shader's stage is parsed from the source, and
// vertex shaders additionally get their vertex buffer layouts parsed from @location input structs.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - shaderType: the pipeline stage of the shader
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the compiled shader
//   - error: ErrCompile or ErrMissingEntryPoint
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
	}

	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, key, err)
	}
	s.spirv = spirv

	s.entryPoint = parseEntryPoint(source, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("%w: %s has no @%s function", ErrMissingEntryPoint, key, shaderType)
	}
	if shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(source)
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) SPIRV() []byte {
	return s.spirv
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
