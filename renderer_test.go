package sprite

import (
	"errors"
	"testing"

	"github.com/gogpu/wgpu/hal"
)

func newTestRenderer(t *testing.T) (*Renderer, func()) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	r, err := NewRenderer(device, queue, RendererOptions{})
	if err != nil {
		cleanup()
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r, func() {
		r.Destroy()
		cleanup()
	}
}

func testTarget(t *testing.T, r *Renderer, w, h int) (hal.TextureView, func()) {
	t.Helper()
	tex := NewTexture(w, h)
	binding, err := r.UploadTexture(tex, DefaultSampler())
	if err != nil {
		t.Fatalf("UploadTexture() error = %v", err)
	}
	return binding.view, binding.Destroy
}

func TestNewRendererFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := NewRendererFromProvider(&testProvider{device: device, queue: queue}, RendererOptions{})
	if err != nil {
		t.Fatalf("NewRendererFromProvider() error = %v", err)
	}
	r.Destroy()
}

type testProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p *testProvider) HalDevice() any { return p.device }
func (p *testProvider) HalQueue() any  { return p.queue }

func TestNewRendererFromProviderRejectsBadProvider(t *testing.T) {
	if _, err := NewRendererFromProvider(struct{}{}, RendererOptions{}); err == nil {
		t.Error("expected error for provider without HAL accessors")
	}
	if _, err := NewRendererFromProvider(&testProvider{}, RendererOptions{}); err == nil {
		t.Error("expected error for provider with nil device")
	}
}

func TestRendererFrameLifecycle(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	target, destroyTarget := testTarget(t, r, 64, 64)
	defer destroyTarget()

	view := NewView(Mat4Identity(), Mat4Orthographic(0, 64, 0, 64, 0, 1), V3(0, 0, 0), V4(0, 0, 64, 64))
	if err := r.BeginFrame(view, target); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}

	binding, err := r.UploadTexture(onePixelTexture(V4(1, 1, 1, 1)), DefaultSampler())
	if err != nil {
		t.Fatalf("UploadTexture() error = %v", err)
	}
	defer binding.Destroy()

	batch := NewBatch(VariantBase)
	batch.Add(Sprite{Position: V3(8, 8, 0), Size: V2(16, 16)})
	if err := r.Draw(batch, binding, nil); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

func TestRendererDrawWithoutFrame(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	batch := NewBatch(VariantBase)
	batch.Add(Sprite{Size: V2(1, 1)})
	if err := r.Draw(batch, nil, nil); !errors.Is(err, ErrFrameNotStarted) {
		t.Errorf("Draw() error = %v, want ErrFrameNotStarted", err)
	}
}

func TestRendererFlushWithoutFrame(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	if err := r.Flush(); !errors.Is(err, ErrFrameNotStarted) {
		t.Errorf("Flush() error = %v, want ErrFrameNotStarted", err)
	}
}

func TestRendererBeginFrameNilView(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	if err := r.BeginFrame(nil, nil); !errors.Is(err, ErrNoView) {
		t.Errorf("BeginFrame(nil) error = %v, want ErrNoView", err)
	}
}

func TestRendererDoubleBeginFrame(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	target, destroyTarget := testTarget(t, r, 16, 16)
	defer destroyTarget()

	view := identityView()
	if err := r.BeginFrame(view, target); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := r.BeginFrame(view, target); err == nil {
		t.Error("second BeginFrame() succeeded mid-frame")
	}
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

func TestRendererDrawContractViolations(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	target, destroyTarget := testTarget(t, r, 16, 16)
	defer destroyTarget()

	if err := r.BeginFrame(identityView(), target); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	defer func() {
		if err := r.Flush(); err != nil {
			t.Fatalf("Flush() error = %v", err)
		}
	}()

	binding, err := r.UploadTexture(onePixelTexture(V4(1, 1, 1, 1)), DefaultSampler())
	if err != nil {
		t.Fatalf("UploadTexture() error = %v", err)
	}
	defer binding.Destroy()

	t.Run("empty_batch", func(t *testing.T) {
		if err := r.Draw(NewBatch(VariantBase), binding, nil); !errors.Is(err, ErrEmptyBatch) {
			t.Errorf("Draw() error = %v, want ErrEmptyBatch", err)
		}
	})

	t.Run("no_texture", func(t *testing.T) {
		batch := NewBatch(VariantBase)
		batch.Add(Sprite{Size: V2(1, 1)})
		if err := r.Draw(batch, nil, nil); !errors.Is(err, ErrNoTexture) {
			t.Errorf("Draw() error = %v, want ErrNoTexture", err)
		}
	})

	t.Run("tonemap_without_tonemapper", func(t *testing.T) {
		batch := NewBatch(VariantTonemap)
		batch.Add(Sprite{Size: V2(1, 1)})
		if err := r.Draw(batch, binding, nil); !errors.Is(err, ErrMissingTonemapper) {
			t.Errorf("Draw() error = %v, want ErrMissingTonemapper", err)
		}
	})
}

func TestRendererAllVariantDraws(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	target, destroyTarget := testTarget(t, r, 32, 32)
	defer destroyTarget()

	binding, err := r.UploadTexture(onePixelTexture(V4(1, 1, 1, 1)), DefaultSampler())
	if err != nil {
		t.Fatalf("UploadTexture() error = %v", err)
	}
	defer binding.Destroy()

	if err := r.BeginFrame(identityView(), target); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}

	var tm ReinhardLuminance
	for _, v := range AllVariants() {
		batch := NewBatch(v)
		batch.Add(Sprite{Size: V2(1, 1), Color: V4(1, 1, 1, 1)})
		var mapper Tonemapper
		if v.Tonemapped() {
			mapper = tm
		}
		if err := r.Draw(batch, binding, mapper); err != nil {
			t.Fatalf("Draw(%s) error = %v", v, err)
		}
	}

	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

func TestUploadTextureNil(t *testing.T) {
	r, cleanup := newTestRenderer(t)
	defer cleanup()

	if _, err := r.UploadTexture(nil, DefaultSampler()); !errors.Is(err, ErrNoTexture) {
		t.Errorf("UploadTexture(nil) error = %v, want ErrNoTexture", err)
	}
}
