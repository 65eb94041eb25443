package sprite

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Pipeline owns the GPU objects for the sprite shading stage: one shader
// module per variant, the shared bind group layouts, and one render
// pipeline per requested variant. Pipelines are created lazily and
// cached; requesting the same variant twice returns the same pipeline.
//
// Bind group layout:
//
//	Group 0, binding 0: View uniform (vertex+fragment)
//	Group 1, binding 0: sprite texture (texture_2d, fragment)
//	Group 1, binding 1: sprite sampler (filtering, fragment)
type Pipeline struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	mu            sync.RWMutex
	viewLayout    hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	shaders       [variantCount]hal.ShaderModule
	pipelines     [variantCount]hal.RenderPipeline
}

// PipelineOptions configures pipeline creation.
type PipelineOptions struct {
	// TargetFormat is the color attachment format the pipelines render
	// into. Zero value selects BGRA8Unorm.
	TargetFormat gputypes.TextureFormat
}

// NewPipeline creates a sprite pipeline bound to the given device and
// queue. No GPU objects are created until a variant is requested.
func NewPipeline(device hal.Device, queue hal.Queue, opts PipelineOptions) (*Pipeline, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	format := opts.TargetFormat
	if format == 0 {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	return &Pipeline{
		device: device,
		queue:  queue,
		format: format,
	}, nil
}

// Variant returns the render pipeline for the given variant, creating
// it on first use.
func (p *Pipeline) Variant(v Variant) (hal.RenderPipeline, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("sprite: invalid variant %d", uint8(v))
	}

	p.mu.RLock()
	if pl := p.pipelines[v]; pl != nil {
		p.mu.RUnlock()
		return pl, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock.
	if pl := p.pipelines[v]; pl != nil {
		return pl, nil
	}

	if err := p.ensureLayoutsLocked(); err != nil {
		return nil, err
	}

	shader, err := p.ensureShaderLocked(v)
	if err != nil {
		return nil, err
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  v.String() + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    VertexLayout(v),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", v, err)
	}
	p.pipelines[v] = pipeline
	return pipeline, nil
}

// ViewLayout returns the group 0 bind group layout, creating layouts on
// first use.
func (p *Pipeline) ViewLayout() (hal.BindGroupLayout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLayoutsLocked(); err != nil {
		return nil, err
	}
	return p.viewLayout, nil
}

// TextureLayout returns the group 1 bind group layout, creating layouts
// on first use.
func (p *Pipeline) TextureLayout() (hal.BindGroupLayout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureLayoutsLocked(); err != nil {
		return nil, err
	}
	return p.textureLayout, nil
}

func (p *Pipeline) ensureLayoutsLocked() error {
	if p.pipeLayout != nil {
		return nil
	}

	viewLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_view_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite view layout: %w", err)
	}

	textureLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		p.device.DestroyBindGroupLayout(viewLayout)
		return fmt.Errorf("create sprite texture layout: %w", err)
	}

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{viewLayout, textureLayout},
	})
	if err != nil {
		p.device.DestroyBindGroupLayout(viewLayout)
		p.device.DestroyBindGroupLayout(textureLayout)
		return fmt.Errorf("create sprite pipeline layout: %w", err)
	}

	p.viewLayout = viewLayout
	p.textureLayout = textureLayout
	p.pipeLayout = pipeLayout
	return nil
}

func (p *Pipeline) ensureShaderLocked(v Variant) (hal.ShaderModule, error) {
	if s := p.shaders[v]; s != nil {
		return s, nil
	}

	source, err := ShaderSource(v)
	if err != nil {
		return nil, err
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  v.String() + "_shader",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", v, err)
	}
	p.shaders[v] = shader
	return shader, nil
}

// Destroy releases all GPU objects held by the pipeline. Safe to call
// multiple times.
func (p *Pipeline) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, pl := range p.pipelines {
		if pl != nil {
			p.device.DestroyRenderPipeline(pl)
			p.pipelines[i] = nil
		}
	}
	for i, s := range p.shaders {
		if s != nil {
			p.device.DestroyShaderModule(s)
			p.shaders[i] = nil
		}
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.textureLayout != nil {
		p.device.DestroyBindGroupLayout(p.textureLayout)
		p.textureLayout = nil
	}
	if p.viewLayout != nil {
		p.device.DestroyBindGroupLayout(p.viewLayout)
		p.viewLayout = nil
	}
}

// DrawContract describes what a draw is about to bind, for validation
// against the variant's compile-time requirements.
type DrawContract struct {
	// Variant is the pipeline variant the draw will use.
	Variant Variant

	// HasColorAttribute reports whether the vertex data carries the
	// per-vertex color attribute at location 2.
	HasColorAttribute bool

	// HasTexture reports whether a group 1 texture binding is supplied.
	HasTexture bool

	// Tonemapper is the curve bound for tonemapped variants, nil
	// otherwise.
	Tonemapper Tonemapper
}

// ValidateDraw checks a draw's bindings against its variant at setup
// time. Every mismatch is an explicit error; nothing is silently
// defaulted or dropped.
func ValidateDraw(c DrawContract) error {
	if !c.Variant.Valid() {
		return fmt.Errorf("sprite: invalid variant %d", uint8(c.Variant))
	}
	if !c.HasTexture {
		return ErrNoTexture
	}
	if c.Variant.Colored() && !c.HasColorAttribute {
		return ErrMissingColorAttribute
	}
	if !c.Variant.Colored() && c.HasColorAttribute {
		return ErrUnexpectedColorAttribute
	}
	if c.Variant.Tonemapped() && c.Tonemapper == nil {
		return ErrMissingTonemapper
	}
	return nil
}
