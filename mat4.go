package sprite

import "github.com/chewxy/math32"

// Vec3 is a 3-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a 4-component float32 vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// V3 is a convenience constructor for Vec3.
func V3(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// V4 is a convenience constructor for Vec4.
func V4(x, y, z, w float32) Vec4 { return Vec4{X: x, Y: y, Z: z, W: w} }

// Add returns the sum of two vectors.
func (v Vec4) Add(w Vec4) Vec4 {
	return Vec4{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z, W: v.W + w.W}
}

// Scale returns the vector scaled by a scalar.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{X: v.X * s, Y: v.Y * s, Z: v.Z * s, W: v.W * s}
}

// Hadamard returns the component-wise product of two vectors.
// This is the tint operation of the colored fragment path: all four
// channels participate, alpha included.
func (v Vec4) Hadamard(w Vec4) Vec4 {
	return Vec4{X: v.X * w.X, Y: v.Y * w.Y, Z: v.Z * w.Z, W: v.W * w.W}
}

// Length returns the Euclidean length of the vector.
func (v Vec4) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W)
}

// Mat4 is a 4x4 float32 matrix stored column-major, matching the memory
// layout of a WGSL mat4x4<f32>. Element (row r, column c) is m[c*4+r].
type Mat4 [16]float32

// Mat4Identity returns the identity matrix.
func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Translation returns a translation matrix.
func Mat4Translation(x, y, z float32) Mat4 {
	m := Mat4Identity()
	m[12] = x
	m[13] = y
	m[14] = z
	return m
}

// Mat4Scale returns a scaling matrix.
func Mat4Scale(x, y, z float32) Mat4 {
	m := Mat4Identity()
	m[0] = x
	m[5] = y
	m[10] = z
	return m
}

// Mat4Orthographic returns an orthographic projection mapping the given
// volume to WebGPU clip space (x,y in [-1,1], z in [0,1]).
func Mat4Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	rw := 1 / (right - left)
	rh := 1 / (top - bottom)
	rd := 1 / (far - near)
	var m Mat4
	m[0] = 2 * rw
	m[5] = 2 * rh
	m[10] = rd
	m[12] = -(right + left) * rw
	m[13] = -(top + bottom) * rh
	m[14] = -near * rd
	m[15] = 1
	return m
}

// At returns the element at (row, col).
func (m Mat4) At(row, col int) float32 { return m[col*4+row] }

// Mul returns the matrix product m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * n[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// MulVec4 returns the matrix-vector product m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms a 3D point as a homogeneous (x, y, z, 1) vector.
// This is the vertex-stage transform: no perspective divide is performed.
func (m Mat4) MulPoint(p Vec3) Vec4 {
	return m.MulVec4(Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1})
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[r*4+c] = m[c*4+r]
		}
	}
	return out
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float32 {
	return m.determinant()
}

func (m Mat4) determinant() float32 {
	// Laplace expansion over the first column (column-major indexing).
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	return b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
}

// Inverse returns the inverse of the matrix and whether it exists.
// A singular matrix returns the identity and false; feeding a singular
// view-projection to the vertex stage produces degenerate geometry, which
// is the host's responsibility, not a recoverable error here.
func (m Mat4) Inverse() (Mat4, bool) {
	return m.inverse()
}

func (m Mat4) inverse() (Mat4, bool) {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if math32.Abs(det) < 1e-12 {
		return Mat4Identity(), false
	}
	rd := 1 / det

	var out Mat4
	out[0] = (a11*b11 - a12*b10 + a13*b09) * rd
	out[1] = (a02*b10 - a01*b11 - a03*b09) * rd
	out[2] = (a31*b05 - a32*b04 + a33*b03) * rd
	out[3] = (a22*b04 - a21*b05 - a23*b03) * rd
	out[4] = (a12*b08 - a10*b11 - a13*b07) * rd
	out[5] = (a00*b11 - a02*b08 + a03*b07) * rd
	out[6] = (a32*b02 - a30*b05 - a33*b01) * rd
	out[7] = (a20*b05 - a22*b02 + a23*b01) * rd
	out[8] = (a10*b10 - a11*b08 + a13*b06) * rd
	out[9] = (a01*b08 - a00*b10 - a03*b06) * rd
	out[10] = (a30*b04 - a31*b02 + a33*b00) * rd
	out[11] = (a21*b02 - a20*b04 - a23*b00) * rd
	out[12] = (a11*b07 - a10*b09 - a12*b06) * rd
	out[13] = (a00*b09 - a01*b07 + a02*b06) * rd
	out[14] = (a31*b01 - a30*b03 - a32*b00) * rd
	out[15] = (a20*b03 - a21*b01 + a22*b00) * rd
	return out, true
}

// ApproxEqual reports whether every element of m is within tol of n.
func (m Mat4) ApproxEqual(n Mat4, tol float32) bool {
	for i := range m {
		if math32.Abs(m[i]-n[i]) > tol {
			return false
		}
	}
	return true
}
