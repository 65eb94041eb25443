// Package sprite implements the sprite shading stage of a 2D rendering
// pipeline on top of gogpu/wgpu.
//
// # Overview
//
// A sprite is a textured quad. This package owns everything between the
// host's batched vertex data and the pixels on screen: the WGSL shader
// that transforms quad vertices into clip space and shades the covered
// pixels, the per-frame View uniform, the vertex and resource binding
// layouts the host must match, and the pipeline specialization that turns
// two compile-time feature flags into four concrete program variants.
//
// # Variants
//
// The shader source is specialized at pipeline-creation time by two
// independent flags:
//
//   - VariantColored: vertices carry a per-vertex RGBA tint that
//     multiplies the sampled texel, alpha included.
//   - VariantTonemap: a Reinhard-luminance curve compresses the RGB
//     channels into displayable range; alpha is untouched.
//
// Variant choice is fixed before any draw. Mismatches between the chosen
// variant and the bound resources (a colored draw without color data, a
// tonemap draw without a tonemapping curve) are rejected at draw-setup
// time, never silently defaulted.
//
// # Quick Start
//
//	r, err := sprite.NewRenderer(device, queue, sprite.RendererOptions{})
//	defer r.Destroy()
//
//	tex, err := r.UploadTexture(atlas, sprite.DefaultSampler())
//	view := sprite.NewView(sprite.Mat4Identity(), proj, worldPos, viewport)
//
//	batch := sprite.NewBatch(sprite.VariantBase)
//	batch.Add(sprite.Sprite{Position: pos, Size: size})
//
//	r.BeginFrame(view, target)
//	r.Draw(batch, tex, nil)
//	err = r.Flush()
//
// # Software Reference
//
// Both shader stages have a software twin (VertexStage, FragmentStage)
// with identical semantics, used by the tests and the SoftwareRenderer
// fallback. The WGSL and Go implementations share one contract: same
// matrix convention, same sampler addressing, same tonemapping constants.
package sprite
