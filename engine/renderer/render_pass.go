package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderPass describes how the single colour attachment of the off-screen target is treated:
// its format, what happens to it when the pass begins and ends, and the value it is cleared to.
// There is no depth/stencil attachment.
type RenderPass struct {
	// Format is the texel format of the colour attachment. Readback assumes 8-bit RGBA.
	Format wgpu.TextureFormat
	// LoadOp is applied to the attachment when the pass begins.
	LoadOp wgpu.LoadOp
	// StoreOp is applied to the attachment when the pass ends.
	StoreOp wgpu.StoreOp
	// ClearColor is the value written to every texel when LoadOp is wgpu.LoadOpClear.
	ClearColor wgpu.Color
	// SampleCount is the number of samples per texel; only 1 is supported.
	SampleCount uint32
}

// DefaultRenderPass returns the render pass used for the triangle: cleared to opaque blue on
// entry, stored on exit, RGBA8 unorm, single sampled.
func DefaultRenderPass() RenderPass {
	return RenderPass{
		Format:      wgpu.TextureFormatRGBA8Unorm,
		LoadOp:      wgpu.LoadOpClear,
		StoreOp:     wgpu.StoreOpStore,
		ClearColor:  common.ClearColor,
		SampleCount: 1,
	}
}

// Validate checks that the render pass can be read back into an RGBA8 output buffer.
//
// Returns:
//   - error: ErrInvalidRenderPass describing the offending field, nil when valid
func (rp RenderPass) Validate() error {
	if rp.Format != wgpu.TextureFormatRGBA8Unorm {
		return fmt.Errorf("%w: format %v is not RGBA8 unorm", ErrInvalidRenderPass, rp.Format)
	}
	if rp.SampleCount != 1 {
		return fmt.Errorf("%w: sample count %d, multisampling is not supported", ErrInvalidRenderPass, rp.SampleCount)
	}
	if rp.StoreOp != wgpu.StoreOpStore {
		return fmt.Errorf("%w: colour attachment must be stored to be read back", ErrInvalidRenderPass)
	}
	return nil
}

// descriptor binds the render pass to a concrete attachment view.
func (rp RenderPass) descriptor(view *wgpu.TextureView) *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     rp.LoadOp,
				StoreOp:    rp.StoreOp,
				ClearValue: rp.ClearColor,
			},
		},
	}
}

// Framebuffer is the render target image, the view over it, and the render pass descriptor
// that binds that view to the render pass's colour attachment.
type Framebuffer struct {
	width, height uint32

	texture    *wgpu.Texture
	view       *wgpu.TextureView
	descriptor *wgpu.RenderPassDescriptor
}

// Size returns the framebuffer dimensions in pixels.
func (f *Framebuffer) Size() (width, height uint32) {
	return f.width, f.height
}

// Texture returns the GPU image rendered into.
func (f *Framebuffer) Texture() *wgpu.Texture {
	return f.texture
}

// View returns the view over the target image used as the colour attachment.
func (f *Framebuffer) View() *wgpu.TextureView {
	return f.view
}

// Descriptor returns the render pass descriptor used to begin the pass.
func (f *Framebuffer) Descriptor() *wgpu.RenderPassDescriptor {
	return f.descriptor
}

// Release releases the view and the target image.
func (f *Framebuffer) Release() {
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
	f.descriptor = nil
}
