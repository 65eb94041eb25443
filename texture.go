package sprite

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	xdraw "golang.org/x/image/draw"
)

// FilterMode selects how texel lookups are interpolated.
type FilterMode uint8

const (
	// FilterNearest selects the closest texel (no interpolation).
	FilterNearest FilterMode = iota

	// FilterLinear performs bilinear interpolation between the 4
	// neighboring texels.
	FilterLinear
)

// String returns a string representation of the filter mode.
func (m FilterMode) String() string {
	switch m {
	case FilterNearest:
		return "Nearest"
	case FilterLinear:
		return "Linear"
	default:
		return "Unknown"
	}
}

// AddressMode selects how out-of-range texture coordinates are resolved.
// Out-of-bounds sampling is defined behavior, never an error.
type AddressMode uint8

const (
	// AddressClampToEdge clamps coordinates to [0, 1].
	AddressClampToEdge AddressMode = iota

	// AddressRepeat tiles the texture, wrapping at integer boundaries.
	AddressRepeat

	// AddressMirrorRepeat tiles the texture, reflecting at each integer
	// boundary.
	AddressMirrorRepeat
)

// String returns a string representation of the address mode.
func (m AddressMode) String() string {
	switch m {
	case AddressClampToEdge:
		return "ClampToEdge"
	case AddressRepeat:
		return "Repeat"
	case AddressMirrorRepeat:
		return "MirrorRepeat"
	default:
		return "Unknown"
	}
}

// SamplerState describes filtering and addressing for sprite texture
// sampling. The fragment stage itself imposes nothing: sampling behavior
// is determined entirely by this host-supplied configuration. The same
// state drives both the software Sample path and the HAL sampler object.
type SamplerState struct {
	MagFilter    FilterMode
	MinFilter    FilterMode
	AddressModeU AddressMode
	AddressModeV AddressMode
}

// DefaultSampler returns the sampler used for typical sprite atlases:
// bilinear filtering with edge clamping.
func DefaultSampler() SamplerState {
	return SamplerState{
		MagFilter:    FilterLinear,
		MinFilter:    FilterLinear,
		AddressModeU: AddressClampToEdge,
		AddressModeV: AddressClampToEdge,
	}
}

// HALDescriptor returns the HAL sampler descriptor equivalent to this
// state.
func (s SamplerState) HALDescriptor(label string) *hal.SamplerDescriptor {
	return &hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: halAddressMode(s.AddressModeU),
		AddressModeV: halAddressMode(s.AddressModeV),
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    halFilterMode(s.MagFilter),
		MinFilter:    halFilterMode(s.MinFilter),
		MipmapFilter: gputypes.FilterModeLinear,
	}
}

func halAddressMode(m AddressMode) gputypes.AddressMode {
	switch m {
	case AddressRepeat:
		return gputypes.AddressModeRepeat
	case AddressMirrorRepeat:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

func halFilterMode(m FilterMode) gputypes.FilterMode {
	if m == FilterNearest {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

// Texture is the CPU-side texel store behind a sprite texture binding.
// Texels are linear float32 RGBA and may exceed 1.0; nothing in the
// shading stage clamps them, so HDR content survives a non-tonemapped
// draw unmodified. The GPU copy is created from EncodeRGBA8 (or uploaded
// by the host in a float format of its choosing).
type Texture struct {
	width  int
	height int
	texels []Vec4
}

// NewTexture creates a texture of the given size with all texels zero.
func NewTexture(width, height int) *Texture {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Texture{
		width:  width,
		height: height,
		texels: make([]Vec4, width*height),
	}
}

// NewTextureFromImage converts any image.Image into a texture,
// normalizing 8-bit channels to [0, 1].
func NewTextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)

	t := NewTexture(b.Dx(), b.Dy())
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			i := rgba.PixOffset(x, y)
			t.texels[y*t.width+x] = Vec4{
				X: float32(rgba.Pix[i]) / 255,
				Y: float32(rgba.Pix[i+1]) / 255,
				Z: float32(rgba.Pix[i+2]) / 255,
				W: float32(rgba.Pix[i+3]) / 255,
			}
		}
	}
	return t
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Texel returns the texel at (x, y). Coordinates are clamped to bounds.
func (t *Texture) Texel(x, y int) Vec4 {
	x = clampInt(x, 0, t.width-1)
	y = clampInt(y, 0, t.height-1)
	return t.texels[y*t.width+x]
}

// SetTexel stores a texel at (x, y). Out-of-bounds writes are ignored.
func (t *Texture) SetTexel(x, y int, c Vec4) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	t.texels[y*t.width+x] = c
}

// Sample performs a filtered lookup at normalized coordinates (u, v)
// using the given sampler state. This is the software twin of the WGSL
// textureSample call: addressing first, then nearest or bilinear
// filtering.
func (t *Texture) Sample(u, v float32, s SamplerState) Vec4 {
	u = resolveAddress(u, s.AddressModeU)
	v = resolveAddress(v, s.AddressModeV)

	if s.MagFilter == FilterNearest {
		return t.sampleNearest(u, v)
	}
	return t.sampleBilinear(u, v)
}

func (t *Texture) sampleNearest(u, v float32) Vec4 {
	x := int(math32.Floor(u * float32(t.width)))
	y := int(math32.Floor(v * float32(t.height)))
	return t.Texel(x, y)
}

func (t *Texture) sampleBilinear(u, v float32) Vec4 {
	// Continuous texel coordinates with texel centers at +0.5.
	fx := u*float32(t.width) - 0.5
	fy := v*float32(t.height) - 0.5

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	c00 := t.Texel(x0, y0)
	c10 := t.Texel(x0+1, y0)
	c01 := t.Texel(x0, y0+1)
	c11 := t.Texel(x0+1, y0+1)

	top := lerpVec4(c00, c10, tx)
	bot := lerpVec4(c01, c11, tx)
	return lerpVec4(top, bot, ty)
}

// EncodeRGBA8 serializes the texels to 8-bit RGBA rows for GPU upload,
// clamping each channel to [0, 1].
func (t *Texture) EncodeRGBA8() []byte {
	data := make([]byte, len(t.texels)*4)
	for i, c := range t.texels {
		data[i*4] = encodeChannel(c.X)
		data[i*4+1] = encodeChannel(c.Y)
		data[i*4+2] = encodeChannel(c.Z)
		data[i*4+3] = encodeChannel(c.W)
	}
	return data
}

// HALDescriptor returns the HAL texture descriptor for the GPU copy of
// this texture.
func (t *Texture) HALDescriptor(label string) *hal.TextureDescriptor {
	return &hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(t.width),
			Height:             uint32(t.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}
}

// resolveAddress maps an arbitrary coordinate into [0, 1] per the
// address mode.
func resolveAddress(c float32, m AddressMode) float32 {
	switch m {
	case AddressRepeat:
		return c - math32.Floor(c)
	case AddressMirrorRepeat:
		ci := math32.Floor(c)
		cf := c - ci
		if int(ci)&1 != 0 {
			return 1 - cf
		}
		return cf
	default:
		return clampF32(c, 0, 1)
	}
}

func lerpVec4(a, b Vec4, t float32) Vec4 {
	return Vec4{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
		W: a.W + (b.W-a.W)*t,
	}
}

func encodeChannel(f float32) byte {
	return byte(clampF32(f, 0, 1)*255 + 0.5)
}

func clampF32(f, lo, hi float32) float32 {
	return math32.Min(math32.Max(f, lo), hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
