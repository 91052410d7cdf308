package state

import (
	"fmt"
	"math/cmplx"
)

// Qubit is a single two-level quantum state |psi> = alpha|0> + beta|1>.
// Immutable after construction.
type Qubit struct {
	alpha complex128
	beta  complex128
}

// NewQubit creates a qubit from explicit amplitudes. Returns
// InvalidStateError unless |alpha|^2 + |beta|^2 = 1 within Epsilon.
func NewQubit(alpha, beta complex128) (Qubit, error) {
	norm := cmplx.Abs(alpha)*cmplx.Abs(alpha) + cmplx.Abs(beta)*cmplx.Abs(beta)
	if diff := norm - 1; diff > Epsilon || diff < -Epsilon {
		return Qubit{}, InvalidStateError{Norm: norm}
	}
	return Qubit{alpha: alpha, beta: beta}, nil
}

// FromBit creates a deterministic basis-state qubit for b in {0, 1}.
func FromBit(b int) (Qubit, error) {
	switch b {
	case 0:
		return Qubit{alpha: 1}, nil
	case 1:
		return Qubit{beta: 1}, nil
	default:
		return Qubit{}, fmt.Errorf("classical bit must be 0 or 1, got %d", b)
	}
}

// Alpha returns the amplitude of |0>.
func (q Qubit) Alpha() complex128 { return q.alpha }

// Beta returns the amplitude of |1>.
func (q Qubit) Beta() complex128 { return q.beta }

// Vector returns the qubit as a 2-dimensional state vector.
func (q Qubit) Vector() Vector {
	return Vector{q.alpha, q.beta}
}

// String renders the qubit in ket notation.
func (q Qubit) String() string {
	return fmt.Sprintf("(%.4f%+.4fi)|0> + (%.4f%+.4fi)|1>",
		real(q.alpha), imag(q.alpha), real(q.beta), imag(q.beta))
}
