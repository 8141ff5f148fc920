package common

// Viewport describes the mapping from normalized device coordinates into framebuffer pixels.
// It mirrors the arguments of wgpu.RenderPassEncoder.SetViewport.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// NewViewport returns a viewport anchored at the origin covering width x height pixels
// with the full [0, 1] depth range.
//
// Parameters:
//   - width: the viewport width in pixels
//   - height: the viewport height in pixels
//
// Returns:
//   - Viewport: the viewport
func NewViewport(width, height uint32) Viewport {
	return Viewport{
		X:        0,
		Y:        0,
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// ToPixel maps a position in normalized device coordinates to framebuffer coordinates.
// NDC has +Y pointing up while framebuffer rows grow downwards, so Y is flipped.
//
// Parameters:
//   - ndc: the x and y components in normalized device coordinates
//
// Returns:
//   - [2]float32: the x and y framebuffer coordinates in pixels
func (v Viewport) ToPixel(ndc [2]float32) [2]float32 {
	return [2]float32{
		v.X + (ndc[0]+1)*0.5*v.Width,
		v.Y + (1-ndc[1])*0.5*v.Height,
	}
}

// Covers reports whether the centre of pixel (px, py) lies strictly inside the triangle
// formed by projecting tri through the viewport. Pixels whose centre sits exactly on an
// edge are reported as not covered; callers sampling coverage should stay clear of edges
// since the GPU's tie-breaking rule is not modelled here.
func (v Viewport) Covers(tri [3]Vertex, px, py int) bool {
	a := v.ToPixel(tri[0].Position)
	b := v.ToPixel(tri[1].Position)
	c := v.ToPixel(tri[2].Position)
	p := [2]float32{float32(px) + 0.5, float32(py) + 0.5}

	e0 := edge(a, b, p)
	e1 := edge(b, c, p)
	e2 := edge(c, a, p)

	return (e0 > 0 && e1 > 0 && e2 > 0) || (e0 < 0 && e1 < 0 && e2 < 0)
}

// EdgeDistance returns the smallest distance in pixels from the centre of pixel (px, py)
// to any edge of the projected triangle.
func (v Viewport) EdgeDistance(tri [3]Vertex, px, py int) float32 {
	a := v.ToPixel(tri[0].Position)
	b := v.ToPixel(tri[1].Position)
	c := v.ToPixel(tri[2].Position)
	p := [2]float32{float32(px) + 0.5, float32(py) + 0.5}

	d := segmentDistance(a, b, p)
	if d1 := segmentDistance(b, c, p); d1 < d {
		d = d1
	}
	if d2 := segmentDistance(c, a, p); d2 < d {
		d = d2
	}
	return d
}

// edge is the 2D cross product of (b - a) and (p - a).
func edge(a, b, p [2]float32) float32 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}

func segmentDistance(a, b, p [2]float32) float32 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	t := float32(0)
	if lenSq > 0 {
		t = ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	}
	t = Clamp(t, 0, 1)
	cx, cy := a[0]+t*dx-p[0], a[1]+t*dy-p[1]
	return sqrt32(cx*cx + cy*cy)
}
