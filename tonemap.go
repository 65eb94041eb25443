package sprite

// Tonemapper maps linear RGB into displayable range. It is a pluggable
// strategy: the fragment stage only decides whether to invoke it, never
// what curve it applies. Implementations must be monotonic in luminance,
// compress highlights toward 1.0, and be near-identity for small inputs.
// Alpha never passes through a Tonemapper.
type Tonemapper interface {
	// Map transforms one linear RGB triple.
	Map(r, g, b float32) (float32, float32, float32)
}

// Rec.709 luma weights. Must stay in lockstep with
// tonemapping_luminance in shaders/tonemapping.wgsl.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// Luminance returns the Rec.709 relative luminance of a linear RGB triple.
func Luminance(r, g, b float32) float32 {
	return lumaR*r + lumaG*g + lumaB*b
}

// ReinhardLuminance is the luminance-preserving Reinhard operator
// l' = l/(1+l), with chroma rescaled by l'/l. It matches
// reinhard_luminance in shaders/tonemapping.wgsl exactly.
type ReinhardLuminance struct{}

// Map implements Tonemapper.
func (ReinhardLuminance) Map(r, g, b float32) (float32, float32, float32) {
	lOld := Luminance(r, g, b)
	if lOld == 0 {
		return r, g, b
	}
	lNew := lOld / (1 + lOld)
	s := lNew / lOld
	return r * s, g * s, b * s
}
