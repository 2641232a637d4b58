package math3d

// Matrix is a dynamically shaped row-major matrix.
type Matrix [][]float64

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Multiply returns the row-by-column product a * b.
// a.Cols() must equal b.Rows(); callers are responsible for the shapes.
func Multiply(a, b Matrix) Matrix {
	out := make(Matrix, a.Rows())
	for i := range out {
		out[i] = make([]float64, b.Cols())
		for j := range out[i] {
			var sum float64
			for k := range a.Cols() {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// MultiplyChain folds Multiply over ms from the left.
// At least one matrix is required.
func MultiplyChain(ms ...Matrix) Matrix {
	out := ms[0]
	for _, m := range ms[1:] {
		out = Multiply(out, m)
	}
	return out
}

// Column returns v as a 4x1 column matrix.
func Column(v Vec4) Matrix {
	return Matrix{{v.X}, {v.Y}, {v.Z}, {v.W}}
}

// Mat4 converts a 4x4 Matrix to a Mat4.
func (m Matrix) Mat4() Mat4 {
	var out Mat4
	for row := range 4 {
		copy(out[row][:], m[row])
	}
	return out
}
