package sprite

import (
	"encoding/binary"
	"fmt"
)

// MaxQuadCapacity is the maximum number of sprites a batch can hold.
// Quad indices are uint16, so 4 vertices per quad caps a batch at
// 65536/4 quads before the index base would wrap.
const MaxQuadCapacity = 16384

// Sprite describes one textured quad in world space. UVMin/UVMax select
// the atlas region; Color is the optional per-sprite tint used by the
// colored variants.
type Sprite struct {
	// Position is the world-space position of the sprite's bottom-left
	// corner.
	Position Vec3

	// Size is the sprite's extent along world X and Y.
	Size Vec2

	// UVMin and UVMax bound the sampled texture region. The default
	// zero/zero pair is replaced with the full [0,1] range.
	UVMin Vec2
	UVMax Vec2

	// Color tints the sprite in colored variants. Ignored otherwise.
	Color Vec4
}

// Vec2 is a 2-component float32 vector.
type Vec2 struct {
	X, Y float32
}

// V2 constructs a Vec2.
func V2(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// Batch accumulates sprite quads that share one texture and one variant
// so they can be drawn with a single pipeline bind. Vertices follow the
// quad corner order bottom-left, bottom-right, top-right, top-left with
// indices 0,1,2 2,3,0 per quad.
type Batch struct {
	variant  Variant
	vertices []Vertex
	indices  []uint16
}

// NewBatch creates an empty batch for the given variant.
func NewBatch(variant Variant) *Batch {
	return &Batch{variant: variant}
}

// Variant returns the pipeline variant this batch was built for.
func (b *Batch) Variant() Variant { return b.variant }

// Len returns the number of sprites in the batch.
func (b *Batch) Len() int { return len(b.vertices) / 4 }

// Reset clears the batch for reuse, keeping capacity.
func (b *Batch) Reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
}

// Add appends one sprite to the batch. It returns ErrBatchFull once the
// batch holds MaxQuadCapacity sprites; flush or Reset and continue in a
// fresh batch.
func (b *Batch) Add(s Sprite) error {
	if b.Len() >= MaxQuadCapacity {
		return fmt.Errorf("%w: %d sprites exceeds max %d", ErrBatchFull, b.Len()+1, MaxQuadCapacity)
	}

	uvMin, uvMax := s.UVMin, s.UVMax
	if uvMin == (Vec2{}) && uvMax == (Vec2{}) {
		uvMax = Vec2{X: 1, Y: 1}
	}

	base := uint16(len(b.vertices))
	x0, y0 := s.Position.X, s.Position.Y
	x1, y1 := x0+s.Size.X, y0+s.Size.Y
	z := s.Position.Z

	b.vertices = append(b.vertices,
		Vertex{Position: Vec3{X: x0, Y: y0, Z: z}, U: uvMin.X, V: uvMax.Y, Color: s.Color},
		Vertex{Position: Vec3{X: x1, Y: y0, Z: z}, U: uvMax.X, V: uvMax.Y, Color: s.Color},
		Vertex{Position: Vec3{X: x1, Y: y1, Z: z}, U: uvMax.X, V: uvMin.Y, Color: s.Color},
		Vertex{Position: Vec3{X: x0, Y: y1, Z: z}, U: uvMin.X, V: uvMin.Y, Color: s.Color},
	)
	b.indices = append(b.indices,
		base, base+1, base+2,
		base+2, base+3, base,
	)
	return nil
}

// Vertices returns the accumulated vertex slice.
func (b *Batch) Vertices() []Vertex { return b.vertices }

// Indices returns the accumulated index slice.
func (b *Batch) Indices() []uint16 { return b.indices }

// IndexCount returns the number of indices to draw.
func (b *Batch) IndexCount() int { return len(b.indices) }

// EncodeVertexData serializes the batch vertices with the variant's
// layout, little-endian, ready for a vertex buffer upload.
func (b *Batch) EncodeVertexData() []byte {
	return EncodeVertices(b.variant, b.vertices)
}

// EncodeIndexData serializes the batch indices as uint16 little-endian,
// ready for an index buffer upload.
func (b *Batch) EncodeIndexData() []byte {
	data := make([]byte, len(b.indices)*2)
	for i, idx := range b.indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}

// QuadVertices expands one sprite into its 4 corner vertices, in the
// same corner order a batch uses. Useful for driving the software
// renderer directly.
func QuadVertices(s Sprite) [4]Vertex {
	var b Batch
	_ = b.Add(s) // empty batch, cannot overflow
	return [4]Vertex{b.vertices[0], b.vertices[1], b.vertices[2], b.vertices[3]}
}
