package math3d

import "math"

// Mat4 is a 4x4 matrix stored as rows.
// Vectors are columns, so in a chain A·B·v the rightmost matrix is applied
// first and the leftmost last.
//
// For a transform matrix:
// | Xx Yx Zx Tx |   X,Y,Z = basis vectors (rotation/scale)
// | Xy Yy Zy Ty |   T = translation
// | Xz Yz Zz Tz |
// | 0  0  0  1  |
type Mat4 [4][4]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		{1, 0, 0, v.X},
		{0, 1, 0, v.Y},
		{0, 0, 1, v.Z},
		{0, 0, 0, 1},
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		{v.X, 0, 0, 0},
		{0, v.Y, 0, 0},
		{0, 0, v.Z, 0},
		{0, 0, 0, 1},
	}
}

// RotateX creates a right-handed rotation around the X axis.
// The angle is in degrees.
func RotateX(deg float64) Mat4 {
	c, s := math.Cos(Radians(deg)), math.Sin(Radians(deg))
	return Mat4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateY creates a right-handed rotation around the Y axis.
// The angle is in degrees.
func RotateY(deg float64) Mat4 {
	c, s := math.Cos(Radians(deg)), math.Sin(Radians(deg))
	return Mat4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotateZ creates a right-handed rotation around the Z axis.
// The angle is in degrees.
func RotateZ(deg float64) Mat4 {
	c, s := math.Cos(Radians(deg)), math.Sin(Radians(deg))
	return Mat4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Perspective creates a symmetric-frustum perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// near and far are clipping planes.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		{f / aspect, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, (far + near) * nf, 2 * far * near * nf},
		{0, 0, -1, 0},
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row][k] * b[k][col]
			}
			m[row][col] = sum
		}
	}
	return m
}

// Chain multiplies the matrices left to right: ms[0] * ms[1] * ... * ms[n-1].
// At least one matrix is required.
func Chain(ms ...Mat4) Mat4 {
	m := ms[0]
	for _, next := range ms[1:] {
		m = m.Mul(next)
	}
	return m
}

// MulVec4 transforms a Vec4 (4x4 by 4x1).
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z + m[0][3]*v.W,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z + m[1][3]*v.W,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z + m[2][3]*v.W,
		m[3][0]*v.X + m[3][1]*v.Y + m[3][2]*v.Z + m[3][3]*v.W,
	}
}

// Matrix returns m as a dynamically shaped matrix.
func (m Mat4) Matrix() Matrix {
	out := make(Matrix, 4)
	for row := range 4 {
		out[row] = []float64{m[row][0], m[row][1], m[row][2], m[row][3]}
	}
	return out
}
