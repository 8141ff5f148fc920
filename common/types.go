// package common contains common types that are used throughout this renderer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexSize is the size in bytes of a single packed Vertex (two float32 components).
const VertexSize = 8

// ImageChannels is the number of 8-bit channels per pixel in the render target and output buffer (RGBA).
const ImageChannels = 4

// Default output image dimensions in pixels.
const (
	DefaultImageWidth  = 1024
	DefaultImageHeight = 1024
)

// Vertex is a single 2D position in normalized device coordinates.
// Vertices are created once and consumed by the vertex stage of the render pipeline.
type Vertex struct {
	// Position holds the x and y components in normalized device coordinates, each in the [-1, 1] range.
	Position [2]float32
}

// TriangleVertices are the three fixed corners of the rendered triangle.
var TriangleVertices = [3]Vertex{
	{Position: [2]float32{-0.5, -0.5}},
	{Position: [2]float32{0.0, 0.5}},
	{Position: [2]float32{0.5, -0.25}},
}

// ClearColor is the color the render target is cleared to when the render pass begins: opaque blue.
var ClearColor = wgpu.Color{R: 0.0, G: 0.0, B: 1.0, A: 1.0}

// ClearColorRGBA is ClearColor as it appears in an RGBA8 unorm readback.
var ClearColorRGBA = color.RGBA{
	R: UnormToByte(ClearColor.R),
	G: UnormToByte(ClearColor.G),
	B: UnormToByte(ClearColor.B),
	A: UnormToByte(ClearColor.A),
}

// Vertices packs the given vertices into the little-endian byte layout expected by a
// Float32x2 vertex attribute at location 0 with a stride of VertexSize.
//
// Parameters:
//   - vs: the vertices to pack, in draw order
//
// Returns:
//   - []byte: the packed vertex data, len(vs)*VertexSize bytes long
func Vertices(vs ...Vertex) []byte {
	out := make([]byte, len(vs)*VertexSize)
	for i, v := range vs {
		binary.LittleEndian.PutUint32(out[i*VertexSize:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(out[i*VertexSize+4:], math.Float32bits(v.Position[1]))
	}
	return out
}

// OutputSize returns the number of bytes needed to hold one RGBA8 image of the given dimensions.
func OutputSize(width, height uint32) uint64 {
	return uint64(width) * uint64(height) * ImageChannels
}
