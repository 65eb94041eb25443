package sprite

import "image"

// Software reference implementation of the sprite shading stage. It
// mirrors the WGSL entry points exactly so GPU and CPU paths can be
// compared texel for texel in tests.

// VertexStage transforms a single vertex the way vs_main does: position
// is projected through the view-projection matrix, UV passes through
// unchanged, and the per-vertex color passes through only for colored
// variants.
func VertexStage(view *View, v Vertex, variant Variant) VertexOutput {
	out := VertexOutput{
		Position: view.ViewProj.MulVec4(Vec4{X: v.Position.X, Y: v.Position.Y, Z: v.Position.Z, W: 1}),
		U:        v.U,
		V:        v.V,
	}
	if variant.Colored() {
		out.Color = v.Color
	}
	return out
}

// FragmentStage shades a single fragment the way fs_main does. The
// stages run in fixed order: texture sample, then the optional vertex
// color multiply, then the optional tonemap. The tint multiplies all
// four channels including alpha; the tonemap touches RGB only.
//
// A nil tonemapper with a tonemapped variant is a contract violation
// that ValidateDraw rejects before any fragment runs; here it is a
// programming error and the tonemap is simply skipped.
func FragmentStage(variant Variant, in VertexOutput, tex *Texture, sampler SamplerState, tm Tonemapper) Vec4 {
	color := tex.Sample(in.U, in.V, sampler)

	if variant.Colored() {
		color = in.Color.Hadamard(color)
	}

	if variant.Tonemapped() && tm != nil {
		r, g, b := tm.Map(color.X, color.Y, color.Z)
		color.X, color.Y, color.Z = r, g, b
	}

	return color
}

// Framebuffer is a float RGBA render target for the software renderer.
// Colors are stored unclamped.
type Framebuffer struct {
	width  int
	height int
	pixels []Vec4
}

// NewFramebuffer creates a framebuffer cleared to transparent black.
func NewFramebuffer(width, height int) *Framebuffer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]Vec4, width*height),
	}
}

// Width returns the framebuffer width in pixels.
func (f *Framebuffer) Width() int { return f.width }

// Height returns the framebuffer height in pixels.
func (f *Framebuffer) Height() int { return f.height }

// Pixel returns the color at (x, y), or zero when out of bounds.
func (f *Framebuffer) Pixel(x, y int) Vec4 {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return Vec4{}
	}
	return f.pixels[y*f.width+x]
}

// Clear fills every pixel with the given color.
func (f *Framebuffer) Clear(c Vec4) {
	for i := range f.pixels {
		f.pixels[i] = c
	}
}

// Image converts the framebuffer to an image, clamping each channel to
// [0, 1]. Pixels are stored premultiplied, matching image.RGBA semantics.
func (f *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			c := f.pixels[y*f.width+x]
			i := img.PixOffset(x, y)
			img.Pix[i] = encodeChannel(c.X)
			img.Pix[i+1] = encodeChannel(c.Y)
			img.Pix[i+2] = encodeChannel(c.Z)
			img.Pix[i+3] = encodeChannel(c.W)
		}
	}
	return img
}

// blend applies premultiplied-alpha source-over compositing, matching
// the blend state the GPU pipelines are built with.
func (f *Framebuffer) blend(x, y int, src Vec4) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	dst := f.pixels[y*f.width+x]
	inv := 1 - src.W
	f.pixels[y*f.width+x] = Vec4{
		X: src.X + dst.X*inv,
		Y: src.Y + dst.Y*inv,
		Z: src.Z + dst.Z*inv,
		W: src.W + dst.W*inv,
	}
}

// SoftwareRenderer rasterizes sprite geometry through the reference
// vertex and fragment stages. It exists for testing and for headless
// environments without a GPU; the Renderer is the real path.
type SoftwareRenderer struct {
	Target     *Framebuffer
	Texture    *Texture
	Sampler    SamplerState
	Tonemapper Tonemapper
}

// DrawQuad shades one sprite quad into the target. The quad corners are
// transformed through VertexStage, clip coordinates are mapped to the
// framebuffer viewport, and each covered pixel runs FragmentStage with
// interpolated UV and color.
func (r *SoftwareRenderer) DrawQuad(view *View, variant Variant, quad [4]Vertex) error {
	if view == nil {
		return ErrNoView
	}
	if r.Target == nil {
		return ErrNoTarget
	}
	if r.Texture == nil {
		return ErrNoTexture
	}
	if variant.Tonemapped() && r.Tonemapper == nil {
		return ErrMissingTonemapper
	}

	var out [4]VertexOutput
	for i, v := range quad {
		out[i] = VertexStage(view, v, variant)
	}

	// Two triangles in quad index order 0,1,2 / 2,3,0.
	r.rasterTriangle(variant, out[0], out[1], out[2])
	r.rasterTriangle(variant, out[2], out[3], out[0])
	return nil
}

type screenVertex struct {
	x, y float32
}

func (r *SoftwareRenderer) rasterTriangle(variant Variant, a, b, c VertexOutput) {
	sa := r.toScreen(a)
	sb := r.toScreen(b)
	sc := r.toScreen(c)

	minX := clampInt(int(min3(sa.x, sb.x, sc.x)), 0, r.Target.width-1)
	maxX := clampInt(int(max3(sa.x, sb.x, sc.x))+1, 0, r.Target.width-1)
	minY := clampInt(int(min3(sa.y, sb.y, sc.y)), 0, r.Target.height-1)
	maxY := clampInt(int(max3(sa.y, sb.y, sc.y))+1, 0, r.Target.height-1)

	area := edge(sa, sb, sc)
	if area == 0 {
		return
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := screenVertex{x: float32(x) + 0.5, y: float32(y) + 0.5}
			w0 := edge(sb, sc, p) / area
			w1 := edge(sc, sa, p) / area
			w2 := edge(sa, sb, p) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			frag := VertexOutput{
				U: w0*a.U + w1*b.U + w2*c.U,
				V: w0*a.V + w1*b.V + w2*c.V,
			}
			if variant.Colored() {
				frag.Color = Vec4{
					X: w0*a.Color.X + w1*b.Color.X + w2*c.Color.X,
					Y: w0*a.Color.Y + w1*b.Color.Y + w2*c.Color.Y,
					Z: w0*a.Color.Z + w1*b.Color.Z + w2*c.Color.Z,
					W: w0*a.Color.W + w1*b.Color.W + w2*c.Color.W,
				}
			}

			color := FragmentStage(variant, frag, r.Texture, r.Sampler, r.Tonemapper)
			r.Target.blend(x, y, color)
		}
	}
}

// toScreen maps a clip-space position to framebuffer pixel coordinates.
// Clip x,y in [-1, 1] map to [0, w] and [h, 0]; y flips because clip
// space points up and the framebuffer points down.
func (r *SoftwareRenderer) toScreen(v VertexOutput) screenVertex {
	w := v.Position.W
	if w == 0 {
		w = 1
	}
	ndcX := v.Position.X / w
	ndcY := v.Position.Y / w
	return screenVertex{
		x: (ndcX + 1) * 0.5 * float32(r.Target.width),
		y: (1 - ndcY) * 0.5 * float32(r.Target.height),
	}
}

func edge(a, b, p screenVertex) float32 {
	return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
}

func min3(a, b, c float32) float32 {
	return min(min(a, b), c)
}

func max3(a, b, c float32) float32 {
	return max(max(a, b), c)
}
