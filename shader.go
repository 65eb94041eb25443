package sprite

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources.

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

//go:embed shaders/tonemapping.wgsl
var tonemappingShaderSource string

// SpriteShaderSource returns the raw (unspecialized) WGSL source of the
// sprite shader, with its #ifdef blocks intact.
func SpriteShaderSource() string { return spriteShaderSource }

// TonemappingShaderSource returns the WGSL source of the shared
// tonemapping routines.
func TonemappingShaderSource() string { return tonemappingShaderSource }

// ShaderSource returns the fully specialized WGSL source for a variant:
// all #ifdef blocks resolved against the variant's definitions, with the
// shared tonemapping routines prepended when the variant needs them.
// The result contains no preprocessor directives and no flag branches.
func ShaderSource(variant Variant) (string, error) {
	if spriteShaderSource == "" || tonemappingShaderSource == "" {
		return "", ErrShaderEmpty
	}
	src, err := Preprocess(spriteShaderSource, variant.Defs())
	if err != nil {
		return "", err
	}
	if variant.Tonemapped() {
		src = tonemappingShaderSource + "\n" + src
	}
	return src, nil
}

// Preprocess resolves #ifdef / #else / #endif lines against the set of
// active definitions. Directives must start the line (leading whitespace
// allowed); everything else is copied through verbatim. Nested blocks are
// supported. Unknown directives are left untouched for the compiler to
// reject.
func Preprocess(source string, defs []string) (string, error) {
	active := make(map[string]bool, len(defs))
	for _, d := range defs {
		active[d] = true
	}

	// Each frame records whether its branch emits lines and whether any
	// branch of the current #ifdef chain has emitted yet.
	type frame struct {
		emitting bool
		taken    bool
	}

	var out strings.Builder
	out.Grow(len(source))
	var stack []frame

	emitting := func() bool {
		for _, f := range stack {
			if !f.emitting {
				return false
			}
		}
		return true
	}

	for _, line := range strings.SplitAfter(source, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#ifdef"):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "#ifdef"))
			on := active[name]
			stack = append(stack, frame{emitting: on, taken: on})

		case trimmed == "#else":
			if len(stack) == 0 {
				return "", ErrUnbalancedShaderDef
			}
			top := &stack[len(stack)-1]
			top.emitting = !top.taken
			top.taken = true

		case trimmed == "#endif":
			if len(stack) == 0 {
				return "", ErrUnbalancedShaderDef
			}
			stack = stack[:len(stack)-1]

		default:
			if emitting() {
				out.WriteString(line)
			}
		}
	}

	if len(stack) != 0 {
		return "", ErrUnbalancedShaderDef
	}
	return out.String(), nil
}

// CompileVariant compiles the specialized WGSL source for a variant to
// SPIR-V words via naga. This both validates the specialized source and
// produces the module fed to backends that consume SPIR-V.
func CompileVariant(variant Variant) ([]uint32, error) {
	src, err := ShaderSource(variant)
	if err != nil {
		return nil, err
	}

	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("sprite: compile %s shader: %w", variant, err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
