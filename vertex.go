package sprite

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// Vertex byte strides per variant. Layout per vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0)
//	uv       (vec2<f32>) =  8 bytes (location 1)
//	color    (vec4<f32>) = 16 bytes (location 2, colored variants only)
const (
	// VertexStride is the stride of the base vertex layout.
	VertexStride = 20

	// VertexStrideColored is the stride of the colored vertex layout.
	VertexStrideColored = 36
)

// Vertex is the per-vertex input record produced by the host's batching
// stage. Color is consumed only by colored variants; for other variants
// it is neither encoded nor uploaded.
type Vertex struct {
	// Position in world space, pre-transform.
	Position Vec3

	// U, V are texture coordinates, [0,1] for fully-covered sampling.
	U, V float32

	// Color is a linear, unpremultiplied RGBA tint (colored variants).
	Color Vec4
}

// VertexOutput is the interpolant record emitted by the vertex stage and
// consumed, after rasterizer interpolation, by the fragment stage. It is
// never visible to the host.
type VertexOutput struct {
	// Position is the mandatory clip-space output. The perspective
	// divide belongs to the fixed-function rasterizer, not this stage.
	Position Vec4

	// U, V are passed through from the vertex unchanged.
	U, V float32

	// Color is passed through under colored variants, zero otherwise.
	Color Vec4
}

// Stride returns the vertex byte stride for the variant.
func (v Variant) Stride() uint64 {
	if v.Colored() {
		return VertexStrideColored
	}
	return VertexStride
}

// VertexLayout returns the vertex buffer layout the host must bind for
// the given variant. It matches the VertexInput struct in sprite.wgsl:
//
//	location 0: position (vec3<f32>)
//	location 1: uv       (vec2<f32>)
//	location 2: color    (vec4<f32>), colored variants only
func VertexLayout(variant Variant) []gputypes.VertexBufferLayout {
	attrs := []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
		{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1}, // uv
	}
	if variant.Colored() {
		attrs = append(attrs,
			gputypes.VertexAttribute{Format: gputypes.VertexFormatFloat32x4, Offset: 20, ShaderLocation: 2}) // color
	}
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: variant.Stride(),
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes:  attrs,
		},
	}
}

// EncodeVertices serializes vertices into raw little-endian bytes for GPU
// upload, using the layout of the given variant. Color channels are
// written only for colored variants.
func EncodeVertices(variant Variant, verts []Vertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	stride := int(variant.Stride())
	data := make([]byte, len(verts)*stride)
	off := 0
	for i := range verts {
		v := &verts[i]
		putF32(data[off:], v.Position.X)
		putF32(data[off+4:], v.Position.Y)
		putF32(data[off+8:], v.Position.Z)
		putF32(data[off+12:], v.U)
		putF32(data[off+16:], v.V)
		if variant.Colored() {
			putF32(data[off+20:], v.Color.X)
			putF32(data[off+24:], v.Color.Y)
			putF32(data[off+28:], v.Color.Z)
			putF32(data[off+32:], v.Color.W)
		}
		off += stride
	}
	return data
}

// putF32 writes a single float32 into buf.
func putF32(buf []byte, f float32) {
	binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(f))
}
