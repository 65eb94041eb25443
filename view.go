package sprite

import (
	"encoding/binary"
	"math"
)

// ViewUniformSize is the byte size of the View uniform block.
// Layout (std140, matching the WGSL View struct):
//
//	view_proj          (mat4x4<f32>) = 64 bytes @ 0
//	inverse_view_proj  (mat4x4<f32>) = 64 bytes @ 64
//	view               (mat4x4<f32>) = 64 bytes @ 128
//	inverse_view       (mat4x4<f32>) = 64 bytes @ 192
//	projection         (mat4x4<f32>) = 64 bytes @ 256
//	inverse_projection (mat4x4<f32>) = 64 bytes @ 320
//	world_position     (vec3<f32>)   = 12 bytes @ 384, padded to 16
//	viewport           (vec4<f32>)   = 16 bytes @ 400
//
// Total = 416 bytes.
const ViewUniformSize = 416

// View is the shared per-frame uniform consumed by the vertex stage.
// The host owns it: one instance per frame, replaced wholesale before any
// draw that uses it, and never written while a submitted frame may still
// read it (single-writer / many-readers discipline).
//
// ViewProj must equal Projection * View; the stated inverses must round-
// trip within floating-point tolerance. NewView maintains both invariants.
type View struct {
	// ViewProj transforms world space to clip space.
	ViewProj Mat4

	// InverseViewProj is the inverse of ViewProj.
	InverseViewProj Mat4

	// View transforms world space to view space.
	View Mat4

	// InverseView is the inverse of View.
	InverseView Mat4

	// Projection transforms view space to clip space.
	Projection Mat4

	// InverseProjection is the inverse of Projection.
	InverseProjection Mat4

	// WorldPosition is the camera position in world space.
	WorldPosition Vec3

	// Viewport encodes (x origin, y origin, width, height) in pixels.
	Viewport Vec4
}

// NewView builds a consistent View from a view matrix, a projection
// matrix, the camera world position, and the viewport rectangle.
// ViewProj and every inverse are derived so the struct invariants hold.
func NewView(view, projection Mat4, worldPosition Vec3, viewport Vec4) *View {
	viewProj := projection.Mul(view)
	invViewProj, _ := viewProj.Inverse()
	invView, _ := view.Inverse()
	invProj, _ := projection.Inverse()
	return &View{
		ViewProj:          viewProj,
		InverseViewProj:   invViewProj,
		View:              view,
		InverseView:       invView,
		Projection:        projection,
		InverseProjection: invProj,
		WorldPosition:     worldPosition,
		Viewport:          viewport,
	}
}

// Consistent reports whether ViewProj equals Projection * View and the
// inverses round-trip to identity, all within the given per-element
// tolerance. A singular ViewProj fails this check; what such a matrix does
// to geometry downstream is the host's problem, not this package's.
func (v *View) Consistent(tol float32) bool {
	if !v.Projection.Mul(v.View).ApproxEqual(v.ViewProj, tol) {
		return false
	}
	id := Mat4Identity()
	if !v.ViewProj.Mul(v.InverseViewProj).ApproxEqual(id, tol) {
		return false
	}
	if !v.View.Mul(v.InverseView).ApproxEqual(id, tol) {
		return false
	}
	return v.Projection.Mul(v.InverseProjection).ApproxEqual(id, tol)
}

// EncodeUniform serializes the View into the exact byte layout of the
// WGSL uniform block at group 0 binding 0. Matrices are written in
// column-major order; world_position is padded out to 16 bytes.
func (v *View) EncodeUniform() []byte {
	buf := make([]byte, ViewUniformSize)
	off := 0
	for _, m := range [6]Mat4{
		v.ViewProj, v.InverseViewProj,
		v.View, v.InverseView,
		v.Projection, v.InverseProjection,
	} {
		for _, f := range m {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v.WorldPosition.X))
	binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(v.WorldPosition.Y))
	binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(v.WorldPosition.Z))
	off += 16 // vec3 padded to 16 bytes
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v.Viewport.X))
	binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(v.Viewport.Y))
	binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(v.Viewport.Z))
	binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(v.Viewport.W))
	return buf
}
