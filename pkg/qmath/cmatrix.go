// Package qmath provides complex linear algebra helpers shared by the
// simulation engine: Kronecker products, conjugate transposes and unitarity
// checks over gonum complex matrices.
package qmath

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Identity returns the dim x dim identity matrix.
func Identity(dim int) *mat.CDense {
	m := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Clone returns a deep copy of m.
func Clone(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

// Mul returns the matrix product a*b. Inner dimensions must agree;
// callers validate sizes before composing operators.
func Mul(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		panic("qmath: matrix product dimension mismatch")
	}
	out := mat.NewCDense(ar, bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < bc; j++ {
			var sum complex128
			for k := 0; k < ac; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// MulVec returns the matrix-vector product m*v.
func MulVec(m *mat.CDense, v []complex128) []complex128 {
	r, c := m.Dims()
	if c != len(v) {
		panic("qmath: matrix-vector dimension mismatch")
	}
	out := make([]complex128, r)
	for i := 0; i < r; i++ {
		var sum complex128
		for j := 0; j < c; j++ {
			sum += m.At(i, j) * v[j]
		}
		out[i] = sum
	}
	return out
}

// Dagger returns the conjugate transpose of m.
func Dagger(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(c, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, cmplx.Conj(m.At(i, j)))
		}
	}
	return out
}

// Kron returns the Kronecker product a ⊗ b.
func Kron(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	out := mat.NewCDense(ar*br, ac*bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			aij := a.At(i, j)
			if aij == 0 {
				continue
			}
			for k := 0; k < br; k++ {
				for l := 0; l < bc; l++ {
					out.Set(i*br+k, j*bc+l, aij*b.At(k, l))
				}
			}
		}
	}
	return out
}

// KronVec returns the Kronecker product of two column vectors.
func KronVec(a, b []complex128) []complex128 {
	out := make([]complex128, len(a)*len(b))
	for i, av := range a {
		for j, bv := range b {
			out[i*len(b)+j] = av * bv
		}
	}
	return out
}

// Power raises a square matrix to the n-th power, n >= 0.
// Power(m, 0) is the identity.
func Power(m *mat.CDense, n int) *mat.CDense {
	dim, _ := m.Dims()
	out := Identity(dim)
	for i := 0; i < n; i++ {
		out = Mul(out, m)
	}
	return out
}

// UnitaryDeviation returns the largest absolute deviation of m*m† from the
// identity. A unitary matrix yields a deviation of zero up to rounding.
func UnitaryDeviation(m *mat.CDense) float64 {
	r, c := m.Dims()
	if r != c {
		return math.Inf(1)
	}
	prod := Mul(m, Dagger(m))
	var max float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			if d := cmplx.Abs(prod.At(i, j) - want); d > max {
				max = d
			}
		}
	}
	return max
}

// Norm returns the Euclidean norm of a complex vector.
func Norm(v []complex128) float64 {
	var sum float64
	for _, a := range v {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// EqualApprox reports whether a and b have the same shape and all entries
// within tol of each other.
func EqualApprox(a, b *mat.CDense, tol float64) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			if cmplx.Abs(a.At(i, j)-b.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}
