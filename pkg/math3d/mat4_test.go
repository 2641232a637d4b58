package math3d

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

// assertMatchesMGL compares a row-major Mat4 against mathgl's column-major
// matrix element by element.
func assertMatchesMGL(t *testing.T, got Mat4, want mgl64.Mat4) {
	t.Helper()
	for row := range 4 {
		for col := range 4 {
			if !approxEqual(got[row][col], want.At(row, col)) {
				t.Fatalf("element (%d,%d) = %v, want %v\ngot:  %v\nwant: %v",
					row, col, got[row][col], want.At(row, col), got, want)
			}
		}
	}
}

func TestBuildersMatchMathGL(t *testing.T) {
	tests := []struct {
		name string
		got  Mat4
		want mgl64.Mat4
	}{
		{"identity", Identity(), mgl64.Ident4()},
		{"translate", Translate(V3(1, -2, 3.5)), mgl64.Translate3D(1, -2, 3.5)},
		{"scale", Scale(V3(2, 3, 0.5)), mgl64.Scale3D(2, 3, 0.5)},
		{"rotate x 30", RotateX(30), mgl64.HomogRotate3DX(mgl64.DegToRad(30))},
		{"rotate y -45", RotateY(-45), mgl64.HomogRotate3DY(mgl64.DegToRad(-45))},
		{"rotate z 90", RotateZ(90), mgl64.HomogRotate3DZ(mgl64.DegToRad(90))},
		{"perspective", Perspective(math.Pi/3, 16.0/9.0, 0.1, 1000), mgl64.Perspective(math.Pi/3, 16.0/9.0, 0.1, 1000)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertMatchesMGL(t, tc.got, tc.want)
		})
	}
}

func TestChainMatchesMathGL(t *testing.T) {
	got := Chain(
		Translate(V3(1, 2, 3)),
		RotateZ(10),
		RotateY(20),
		RotateX(30),
		Scale(V3(2, 1, 0.5)),
	)
	want := mgl64.Translate3D(1, 2, 3).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(10))).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(20))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(30))).
		Mul4(mgl64.Scale3D(2, 1, 0.5))

	assertMatchesMGL(t, got, want)
}

func TestChainSingle(t *testing.T) {
	m := RotateY(12)
	if Chain(m) != m {
		t.Error("Chain of one matrix should return it unchanged")
	}
}

func TestChainApplicationOrder(t *testing.T) {
	// Scale is applied first, translation last.
	m := Chain(Translate(V3(10, 0, 0)), Scale(V3(2, 2, 2)))
	got := m.MulVec4(Point(1, 0, 0))
	if !approxEqual(got.X, 12) || !approxEqual(got.W, 1) {
		t.Errorf("T·S·(1,0,0) = %v, want (12,0,0,1)", got)
	}
}

func TestMulVec4MatchesMathGL(t *testing.T) {
	m := Chain(Translate(V3(1, 2, 3)), RotateY(33), Scale(V3(2, 2, 2)))
	wantM := mgl64.Translate3D(1, 2, 3).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(33))).
		Mul4(mgl64.Scale3D(2, 2, 2))

	got := m.MulVec4(V4(0.5, -1, 2, 1))
	want := wantM.Mul4x1(mgl64.Vec4{0.5, -1, 2, 1})

	if !approxEqual(got.X, want[0]) || !approxEqual(got.Y, want[1]) ||
		!approxEqual(got.Z, want[2]) || !approxEqual(got.W, want[3]) {
		t.Errorf("MulVec4 = %v, want %v", got, want)
	}
}

func TestMultiplyShapes(t *testing.T) {
	a := Matrix{
		{1, 2, 3},
		{4, 5, 6},
	}
	b := Matrix{
		{7, 8},
		{9, 10},
		{11, 12},
	}

	got := Multiply(a, b)
	want := Matrix{
		{58, 64},
		{139, 154},
	}

	if got.Rows() != 2 || got.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", got.Rows(), got.Cols())
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("got[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestMultiplyChainAgreesWithMat4(t *testing.T) {
	ms := []Mat4{Translate(V3(4, 5, 6)), RotateX(15), RotateZ(-70), Scale(V3(3, 1, 2))}

	dyn := make([]Matrix, len(ms))
	for i, m := range ms {
		dyn[i] = m.Matrix()
	}

	got := MultiplyChain(dyn...).Mat4()
	want := Chain(ms...)
	for row := range 4 {
		for col := range 4 {
			if !approxEqual(got[row][col], want[row][col]) {
				t.Fatalf("(%d,%d) = %v, want %v", row, col, got[row][col], want[row][col])
			}
		}
	}
}

func TestMatrixTimesColumn(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	got := Multiply(m.Matrix(), Column(Point(1, 1, 1)))
	want := []float64{2, 3, 4, 1}
	for i, w := range want {
		if got[i][0] != w {
			t.Errorf("row %d = %v, want %v", i, got[i][0], w)
		}
	}
}

func TestPerspectiveNearCenterMapsToOrigin(t *testing.T) {
	p := Perspective(Radians(60), 4.0/3.0, 0.1, 1000)
	ndc := p.MulVec4(Point(0, 0, -0.1)).PerspectiveDivide()
	if !approxEqual(ndc.X, 0) || !approxEqual(ndc.Y, 0) || !approxEqual(ndc.Z, -1) {
		t.Errorf("near-plane center projects to %v, want (0,0,-1)", ndc)
	}
}
