package sprite

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestVertexStride(t *testing.T) {
	if VariantBase.Stride() != VertexStride {
		t.Errorf("base stride = %d, want %d", VariantBase.Stride(), VertexStride)
	}
	if VariantColored.Stride() != VertexStrideColored {
		t.Errorf("colored stride = %d, want %d", VariantColored.Stride(), VertexStrideColored)
	}
	// Tonemapping does not change the vertex format.
	if VariantTonemap.Stride() != VertexStride {
		t.Errorf("tonemap stride = %d, want %d", VariantTonemap.Stride(), VertexStride)
	}
}

func TestVertexLayoutBase(t *testing.T) {
	layouts := VertexLayout(VariantBase)
	if len(layouts) != 1 {
		t.Fatalf("expected 1 vertex buffer layout, got %d", len(layouts))
	}
	l := layouts[0]
	if l.ArrayStride != VertexStride {
		t.Errorf("ArrayStride = %d, want %d", l.ArrayStride, VertexStride)
	}
	if len(l.Attributes) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(l.Attributes))
	}
	if l.Attributes[0].Format != gputypes.VertexFormatFloat32x3 ||
		l.Attributes[0].Offset != 0 || l.Attributes[0].ShaderLocation != 0 {
		t.Errorf("position attribute wrong: %+v", l.Attributes[0])
	}
	if l.Attributes[1].Format != gputypes.VertexFormatFloat32x2 ||
		l.Attributes[1].Offset != 12 || l.Attributes[1].ShaderLocation != 1 {
		t.Errorf("uv attribute wrong: %+v", l.Attributes[1])
	}
}

func TestVertexLayoutColored(t *testing.T) {
	layouts := VertexLayout(VariantColored)
	l := layouts[0]
	if l.ArrayStride != VertexStrideColored {
		t.Errorf("ArrayStride = %d, want %d", l.ArrayStride, VertexStrideColored)
	}
	if len(l.Attributes) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(l.Attributes))
	}
	if l.Attributes[2].Format != gputypes.VertexFormatFloat32x4 ||
		l.Attributes[2].Offset != 20 || l.Attributes[2].ShaderLocation != 2 {
		t.Errorf("color attribute wrong: %+v", l.Attributes[2])
	}
}

func decodeF32(data []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
}

func TestEncodeVertices(t *testing.T) {
	verts := []Vertex{
		{Position: V3(1, 2, 3), U: 0.25, V: 0.75, Color: V4(0.1, 0.2, 0.3, 0.4)},
		{Position: V3(-1, 0, 5), U: 1, V: 0, Color: V4(1, 1, 1, 1)},
	}

	t.Run("base", func(t *testing.T) {
		data := EncodeVertices(VariantBase, verts)
		if len(data) != 2*VertexStride {
			t.Fatalf("encoded %d bytes, want %d", len(data), 2*VertexStride)
		}
		if decodeF32(data, 0) != 1 || decodeF32(data, 4) != 2 || decodeF32(data, 8) != 3 {
			t.Error("first vertex position wrong")
		}
		if decodeF32(data, 12) != 0.25 || decodeF32(data, 16) != 0.75 {
			t.Error("first vertex uv wrong")
		}
		// Second vertex starts at the base stride.
		if decodeF32(data, VertexStride) != -1 {
			t.Error("second vertex position wrong")
		}
	})

	t.Run("colored", func(t *testing.T) {
		data := EncodeVertices(VariantColored, verts)
		if len(data) != 2*VertexStrideColored {
			t.Fatalf("encoded %d bytes, want %d", len(data), 2*VertexStrideColored)
		}
		// Color follows uv at offset 20.
		if decodeF32(data, 20) != 0.1 || decodeF32(data, 32) != 0.4 {
			t.Error("first vertex color wrong")
		}
		if decodeF32(data, VertexStrideColored+20) != 1 {
			t.Error("second vertex color wrong")
		}
	})
}

func TestEncodeVerticesEmpty(t *testing.T) {
	if len(EncodeVertices(VariantBase, nil)) != 0 {
		t.Error("encoding no vertices produced bytes")
	}
}
