package graphics

// Matrix is a 2D affine transform:
//
//	| A C TX |
//	| B D TY |
type Matrix struct {
	A, B, C, D, TX, TY float64
}

// IdentityMatrix returns the identity transform.
func IdentityMatrix() Matrix {
	return Matrix{A: 1, D: 1}
}

// TranslationMatrix returns a pure translation transform.
func TranslationMatrix(dx, dy float64) Matrix {
	return Matrix{A: 1, D: 1, TX: dx, TY: dy}
}

// ScaleMatrix returns a pure scale transform.
func ScaleMatrix(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// IsIdentity returns true if the matrix is (approximately) the identity.
func (m Matrix) IsIdentity() bool {
	return floatEqual(m.A, 1) && floatEqual(m.B, 0) &&
		floatEqual(m.C, 0) && floatEqual(m.D, 1) &&
		floatEqual(m.TX, 0) && floatEqual(m.TY, 0)
}

// Mul returns the product m * other.
func (m Matrix) Mul(other Matrix) Matrix {
	return Matrix{
		A:  m.A*other.A + m.C*other.B,
		B:  m.B*other.A + m.D*other.B,
		C:  m.A*other.C + m.C*other.D,
		D:  m.B*other.C + m.D*other.D,
		TX: m.A*other.TX + m.C*other.TY + m.TX,
		TY: m.B*other.TX + m.D*other.TY + m.TY,
	}
}

// Apply transforms the given offset.
func (m Matrix) Apply(o Offset) Offset {
	return Offset{
		X: m.A*o.X + m.C*o.Y + m.TX,
		Y: m.B*o.X + m.D*o.Y + m.TY,
	}
}

// ColorMatrix is a 4x5 color transform in row-major order, applied to
// RGBA channels by the compositor.
type ColorMatrix [20]float64

// IdentityColorMatrix returns the color transform that leaves pixels unchanged.
func IdentityColorMatrix() ColorMatrix {
	var m ColorMatrix
	m[0], m[6], m[12], m[18] = 1, 1, 1, 1
	return m
}

// IsIdentity returns true if the filter is (approximately) a no-op.
func (m ColorMatrix) IsIdentity() bool {
	identity := IdentityColorMatrix()
	for i := range m {
		if !floatEqual(m[i], identity[i]) {
			return false
		}
	}
	return true
}
