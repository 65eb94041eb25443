package sprite

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle is an alias for gpucontext.DeviceProvider. Hosts built on
// the gpucontext ecosystem (gogpu.App and friends) already implement it;
// passing one to NewRendererFromProvider picks up the host's surface
// format automatically.
type DeviceHandle = gpucontext.DeviceProvider

// fenceTimeout bounds how long Flush waits for the GPU.
const fenceTimeout = 5 * time.Second

// Renderer drives the sprite shading stage on a HAL device. A frame is
// a BeginFrame/Draw.../Flush sequence: BeginFrame binds the View and
// opens the render pass, each Draw validates its variant contract and
// records one batch, and Flush submits the command buffer and blocks
// until the GPU signals the fence.
//
// Renderer methods are not safe for concurrent use; one renderer serves
// one frame at a time.
type Renderer struct {
	device   hal.Device
	queue    hal.Queue
	pipeline *Pipeline

	mu    sync.Mutex
	frame *frameState

	// Persistent uniform buffer for the View, rewritten each frame.
	uniformBuf    hal.Buffer
	viewBindGroup hal.BindGroup
}

// frameState holds the per-frame encoder and the transient GPU objects
// destroyed after the fence wait.
type frameState struct {
	encoder    hal.CommandEncoder
	pass       hal.RenderPassEncoder
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
}

// RendererOptions configures renderer creation.
type RendererOptions struct {
	// Pipeline options forwarded to the owned Pipeline.
	Pipeline PipelineOptions
}

// NewRenderer creates a renderer on the given HAL device and queue.
func NewRenderer(device hal.Device, queue hal.Queue, opts RendererOptions) (*Renderer, error) {
	pipeline, err := NewPipeline(device, queue, opts.Pipeline)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		device:   device,
		queue:    queue,
		pipeline: pipeline,
	}, nil
}

// NewRendererFromProvider creates a renderer from a shared GPU context.
// The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue, the convention gpucontext hosts
// use to hand their device to library renderers.
func NewRendererFromProvider(provider any, opts RendererOptions) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("sprite: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("sprite: provider HalDevice is not hal.Device: %w", ErrNilDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("sprite: provider HalQueue is not hal.Queue: %w", ErrNilQueue)
	}
	if dh, ok := provider.(DeviceHandle); ok && opts.Pipeline.TargetFormat == 0 {
		opts.Pipeline.TargetFormat = dh.SurfaceFormat()
	}
	return NewRenderer(device, queue, opts)
}

// Pipeline returns the renderer's pipeline, for hosts that want to warm
// variants ahead of the first frame.
func (r *Renderer) Pipeline() *Pipeline {
	return r.pipeline
}

// BeginFrame uploads the View uniform, opens the command encoder, and
// begins the render pass into target. The pass clears to transparent
// black.
func (r *Renderer) BeginFrame(view *View, target hal.TextureView) error {
	if view == nil {
		return ErrNoView
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frame != nil {
		return fmt.Errorf("sprite: frame already in progress")
	}

	if err := r.ensureViewBinding(); err != nil {
		return err
	}
	r.queue.WriteBuffer(r.uniformBuf, 0, view.EncodeUniform())

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "sprite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})

	r.frame = &frameState{encoder: encoder, pass: pass}
	Logger().Debug("sprite frame started")
	return nil
}

// Draw records one batch with the given texture binding. The variant
// contract is checked before anything touches the GPU: colored variants
// require color data, tonemap variants require a tonemapper, and the
// texture binding is always required.
func (r *Renderer) Draw(batch *Batch, binding *TextureBinding, tm Tonemapper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frame == nil {
		return ErrFrameNotStarted
	}
	if batch == nil || batch.Len() == 0 {
		return ErrEmptyBatch
	}

	variant := batch.Variant()
	if err := ValidateDraw(DrawContract{
		Variant: variant,
		// A batch always encodes color vertices for colored variants, so
		// the color side of the contract holds by construction here.
		HasColorAttribute: variant.Colored(),
		HasTexture:        binding != nil && binding.view != nil,
		Tonemapper:        tm,
	}); err != nil {
		return err
	}

	pipeline, err := r.pipeline.Variant(variant)
	if err != nil {
		return err
	}

	vertBuf, err := r.createAndUploadBuffer("sprite_verts", batch.EncodeVertexData(),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	r.frame.buffers = append(r.frame.buffers, vertBuf)

	idxBuf, err := r.createAndUploadBuffer("sprite_indices", batch.EncodeIndexData(),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	r.frame.buffers = append(r.frame.buffers, idxBuf)

	texGroup, err := r.createTextureBindGroup(binding)
	if err != nil {
		return err
	}
	r.frame.bindGroups = append(r.frame.bindGroups, texGroup)

	rp := r.frame.pass
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, r.viewBindGroup, nil)
	rp.SetBindGroup(1, texGroup, nil)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.SetIndexBuffer(idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(uint32(batch.IndexCount()), 1, 0, 0, 0)

	Logger().Debug("sprite batch recorded",
		"variant", variant.String(), "sprites", batch.Len())
	return nil
}

// Flush ends the pass, submits the frame, and waits for the GPU. Frame
// transients are destroyed after the fence signals.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frame == nil {
		return ErrFrameNotStarted
	}
	frame := r.frame
	r.frame = nil
	defer r.destroyFrame(frame)

	frame.pass.End()
	cmdBuf, err := frame.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := r.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("fence wait: %w", err)
	}
	if !ok {
		return fmt.Errorf("sprite: fence wait timed out after %v", fenceTimeout)
	}

	Logger().Debug("sprite frame submitted")
	return nil
}

// Destroy releases all GPU resources. A frame in progress is abandoned.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frame != nil {
		r.destroyFrame(r.frame)
		r.frame = nil
	}
	if r.viewBindGroup != nil {
		r.device.DestroyBindGroup(r.viewBindGroup)
		r.viewBindGroup = nil
	}
	if r.uniformBuf != nil {
		r.device.DestroyBuffer(r.uniformBuf)
		r.uniformBuf = nil
	}
	r.pipeline.Destroy()
}

func (r *Renderer) ensureViewBinding() error {
	if r.viewBindGroup != nil {
		return nil
	}

	uniformBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_view_uniform",
		Size:  ViewUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create view uniform buffer: %w", err)
	}

	layout, err := r.pipeline.ViewLayout()
	if err != nil {
		r.device.DestroyBuffer(uniformBuf)
		return err
	}

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sprite_view_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: ViewUniformSize,
			}},
		},
	})
	if err != nil {
		r.device.DestroyBuffer(uniformBuf)
		return fmt.Errorf("create view bind group: %w", err)
	}

	r.uniformBuf = uniformBuf
	r.viewBindGroup = bindGroup
	return nil
}

func (r *Renderer) createTextureBindGroup(binding *TextureBinding) (hal.BindGroup, error) {
	layout, err := r.pipeline.TextureLayout()
	if err != nil {
		return nil, err
	}

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sprite_texture_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: binding.view.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: binding.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture bind group: %w", err)
	}
	return bindGroup, nil
}

func (r *Renderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (r *Renderer) destroyFrame(f *frameState) {
	for _, bg := range f.bindGroups {
		r.device.DestroyBindGroup(bg)
	}
	for _, buf := range f.buffers {
		r.device.DestroyBuffer(buf)
	}
}

// TextureBinding owns the GPU objects backing a group 1 texture/sampler
// pair. Create one per sprite texture with UploadTexture and reuse it
// across frames.
type TextureBinding struct {
	device  hal.Device
	texture hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
}

// UploadTexture creates the GPU texture for t, uploads its texels as
// RGBA8, and builds the view and sampler objects for binding.
func (r *Renderer) UploadTexture(t *Texture, state SamplerState) (*TextureBinding, error) {
	if t == nil {
		return nil, ErrNoTexture
	}

	tex, err := r.device.CreateTexture(t.HALDescriptor("sprite_texture"))
	if err != nil {
		return nil, fmt.Errorf("create sprite texture: %w", err)
	}

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "sprite_texture_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create sprite texture view: %w", err)
	}

	sampler, err := r.device.CreateSampler(state.HALDescriptor("sprite_sampler"))
	if err != nil {
		r.device.DestroyTextureView(view)
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create sprite sampler: %w", err)
	}

	w := uint32(t.Width())
	h := uint32(t.Height())
	r.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		t.EncodeRGBA8(),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	return &TextureBinding{
		device:  r.device,
		texture: tex,
		view:    view,
		sampler: sampler,
	}, nil
}

// Destroy releases the binding's GPU objects. Safe to call multiple
// times.
func (b *TextureBinding) Destroy() {
	if b.sampler != nil {
		b.device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	if b.view != nil {
		b.device.DestroyTextureView(b.view)
		b.view = nil
	}
	if b.texture != nil {
		b.device.DestroyTexture(b.texture)
		b.texture = nil
	}
}
