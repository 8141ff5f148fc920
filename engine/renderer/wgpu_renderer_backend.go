package renderer

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	vertexBuffer *wgpu.Buffer
	vertexCount  uint32

	outputBuffer *wgpu.Buffer
	outputSize   uint64

	framebuffer *Framebuffer
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// CreateVertexBuffer uploads the packed vertices into a GPU-resident vertex buffer.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - vertices: the vertices to upload, in draw order
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	CreateVertexBuffer(label string, vertices []common.Vertex) error

	// CreateOutputBuffer creates the CPU-readable buffer the rendered image is copied into.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	CreateOutputBuffer(label string, size uint64) error

	// CreateFramebuffer creates the render target image, a view over it and the render pass
	// descriptor binding that view to the colour attachment.
	//
	// Parameters:
	//   - width: the target width in pixels
	//   - height: the target height in pixels
	//   - rp: the render pass the framebuffer is used with
	//
	// Returns:
	//   - *Framebuffer: the created framebuffer
	//   - error: an error if the texture or view could not be created
	CreateFramebuffer(width, height uint32, rp RenderPass) (*Framebuffer, error)

	// CreateRenderPipeline creates the shader modules, pipeline layout and render pipeline for p,
	// targeting the colour attachment described by rp. The result is stored on p.
	//
	// Parameters:
	//   - p: the pipeline configuration
	//   - rp: the render pass the pipeline renders within
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	CreateRenderPipeline(p pipeline.Pipeline, rp RenderPass) error

	// EncodeDraw records the render pass, the draw and the copy of the target image into the
	// output buffer, in that order.
	//
	// Parameters:
	//   - encoder: the command encoder to record into
	//   - p: the registered pipeline to draw with
	EncodeDraw(encoder *wgpu.CommandEncoder, p pipeline.Pipeline)

	// ReadOutput maps the output buffer, copies its contents out and unmaps it again.
	// Must only be called after the copy has been submitted and the queue has drained.
	//
	// Returns:
	//   - []byte: a copy of the output buffer contents
	//   - error: ErrMapFailed if the buffer could not be mapped
	ReadOutput() ([]byte, error)

	// Release releases all GPU resources owned by the backend.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(device *wgpu.Device, queue *wgpu.Queue) wgpuRendererBackend {
	return &wgpuRendererBackendImpl{
		mu:     &sync.Mutex{},
		device: device,
		queue:  queue,
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) CreateVertexBuffer(label string, vertices []common.Vertex) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: common.Vertices(vertices...),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	if b.vertexBuffer != nil {
		b.vertexBuffer.Release()
	}
	b.vertexBuffer = buf
	b.vertexCount = uint32(len(vertices))
	return nil
}

func (b *wgpuRendererBackendImpl) CreateOutputBuffer(label string, size uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	if b.outputBuffer != nil {
		b.outputBuffer.Release()
	}
	b.outputBuffer = buf
	b.outputSize = size
	return nil
}

func (b *wgpuRendererBackendImpl) CreateFramebuffer(width, height uint32, rp RenderPass) (*Framebuffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Render Target",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   rp.SampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        rp.Format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, err
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	if b.framebuffer != nil {
		b.framebuffer.Release()
	}
	b.framebuffer = &Framebuffer{
		width:      width,
		height:     height,
		texture:    tex,
		view:       view,
		descriptor: rp.descriptor(view),
	}
	return b.framebuffer, nil
}

func (b *wgpuRendererBackendImpl) CreateRenderPipeline(p pipeline.Pipeline, rp RenderPass) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return fmt.Errorf("failed to create vertex shader module %q: %w", vertexShader.Key(), err)
	}
	defer vs.Release()

	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("failed to create fragment shader module %q: %w", fragmentShader.Key(), err)
	}
	defer fs.Release()

	// The triangle binds no resources, so the layout has no bind groups.
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: p.PipelineKey(),
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    rp.Format,
					Blend:     p.BlendState(),
					WriteMask: p.WriteMask(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: rp.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) EncodeDraw(encoder *wgpu.CommandEncoder, p pipeline.Pipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fb := b.framebuffer
	vp := p.Viewport()

	pass := encoder.BeginRenderPass(fb.descriptor)
	pass.SetPipeline(p.RenderPipeline())
	pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	pass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
	pass.Draw(b.vertexCount, 1, 0, 0)
	pass.End()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  fb.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: b.outputBuffer,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  fb.width * 4,
				RowsPerImage: fb.height,
			},
		},
		&wgpu.Extent3D{
			Width:              fb.width,
			Height:             fb.height,
			DepthOrArrayLayers: 1,
		},
	)
}

func (b *wgpuRendererBackendImpl) ReadOutput() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var status wgpu.BufferMapAsyncStatus
	mapped := false
	err := b.outputBuffer.MapAsync(wgpu.MapModeRead, 0, b.outputSize, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		mapped = true
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMapFailed, err)
	}

	// Drive the map callback to completion.
	b.device.Poll(true, nil)

	if !mapped || status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("%w: status %v", ErrMapFailed, status)
	}
	defer b.outputBuffer.Unmap()

	return bytes.Clone(b.outputBuffer.GetMappedRange(0, uint(b.outputSize))), nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framebuffer != nil {
		b.framebuffer.Release()
		b.framebuffer = nil
	}
	if b.outputBuffer != nil {
		b.outputBuffer.Release()
		b.outputBuffer = nil
	}
	if b.vertexBuffer != nil {
		b.vertexBuffer.Release()
		b.vertexBuffer = nil
	}
}
