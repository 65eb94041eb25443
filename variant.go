package sprite

// Variant selects one of the four concrete sprite program variants.
// The two flags are independent compile-time switches: they specialize
// the shader source before compilation, so within one draw every
// invocation follows the same code path with no runtime branching.
//
// Variant choice is fixed at pipeline-creation time and cannot change
// per draw call, let alone per invocation.
type Variant uint8

const (
	// VariantBase samples the texture and emits it unmodified.
	VariantBase Variant = 0

	// VariantColored adds a per-vertex RGBA attribute at location 2 that
	// multiplies the sampled texel component-wise, alpha included.
	VariantColored Variant = 1 << 0

	// VariantTonemap applies the shared Reinhard-luminance curve to the
	// RGB channels of the fragment output. Alpha is untouched.
	VariantTonemap Variant = 1 << 1
)

// variantCount is the size of the closed variant set.
const variantCount = 4

// AllVariants returns the closed set of the four program variants.
func AllVariants() [variantCount]Variant {
	return [variantCount]Variant{
		VariantBase,
		VariantColored,
		VariantTonemap,
		VariantColored | VariantTonemap,
	}
}

// Colored reports whether the color vertex attribute is compiled in.
func (v Variant) Colored() bool { return v&VariantColored != 0 }

// Tonemapped reports whether the tonemapping step is compiled in.
func (v Variant) Tonemapped() bool { return v&VariantTonemap != 0 }

// Defs returns the preprocessor definitions active for this variant.
func (v Variant) Defs() []string {
	var defs []string
	if v.Colored() {
		defs = append(defs, "COLORED")
	}
	if v.Tonemapped() {
		defs = append(defs, "TONEMAP_IN_SHADER")
	}
	return defs
}

// String returns the variant's debug label, used for GPU object labels.
func (v Variant) String() string {
	switch v {
	case VariantBase:
		return "sprite"
	case VariantColored:
		return "sprite_colored"
	case VariantTonemap:
		return "sprite_tonemap"
	case VariantColored | VariantTonemap:
		return "sprite_colored_tonemap"
	default:
		return "sprite_invalid"
	}
}

// Valid reports whether v is one of the four defined variants.
func (v Variant) Valid() bool {
	return v&^(VariantColored|VariantTonemap) == 0
}
