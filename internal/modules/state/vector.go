// Package state provides the amplitude-vector representation of quantum
// state: single qubits and the normalized complex vectors backing registers.
//
// Bit-order convention, fixed once for the whole system: qubit position 0 is
// the MOST significant bit of a basis index. Tensoring qubits in order
// (q0, q1, ..., qN-1) yields a vector whose basis index i encodes the
// classical assignment q0 q1 ... qN-1 read as a binary number, so index 0 is
// |00...0> and index 2^N-1 is |11...1>.
package state

import (
	"fmt"

	"github.com/aristath/qsim/pkg/qmath"
)

// Epsilon is the normalization tolerance for state construction and
// probability checks.
const Epsilon = 1e-9

// InvalidStateError reports amplitudes whose squared magnitudes do not sum
// to one within Epsilon.
type InvalidStateError struct {
	Norm float64
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("amplitudes are not normalized: |v| = %.12f, want 1 within %g", e.Norm, Epsilon)
}

// Vector is a quantum state vector of dimension 2^N for N qubits.
// It is mutated only through gate application and measurement collapse.
type Vector []complex128

// NewVector validates amps as a normalized state vector of power-of-two
// dimension and returns a copy.
func NewVector(amps []complex128) (Vector, error) {
	if len(amps) == 0 || len(amps)&(len(amps)-1) != 0 {
		return nil, fmt.Errorf("state vector dimension must be a positive power of two, got %d", len(amps))
	}
	norm := qmath.Norm(amps)
	if diff := norm - 1; diff > Epsilon || diff < -Epsilon {
		return nil, InvalidStateError{Norm: norm}
	}
	v := make(Vector, len(amps))
	copy(v, amps)
	return v, nil
}

// Qubits returns the number of qubits the vector describes.
func (v Vector) Qubits() int {
	n := 0
	for d := len(v); d > 1; d >>= 1 {
		n++
	}
	return n
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Norm returns the Euclidean norm of the vector.
func (v Vector) Norm() float64 {
	return qmath.Norm(v)
}

// Probabilities returns |amplitude|^2 per basis index. The result always
// sums to the squared norm, 1 for a valid state.
func (v Vector) Probabilities() []float64 {
	probs := make([]float64, len(v))
	for i, a := range v {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// Tensor returns the Kronecker product v ⊗ other. The receiver's qubits
// occupy the more significant bit positions of the result, per the package
// bit-order convention. Tensoring is associative but not commutative.
func (v Vector) Tensor(other Vector) Vector {
	return Vector(qmath.KronVec(v, other))
}

// Bit returns the classical value of position pos in basis index idx,
// following the position-0-is-MSB convention.
func (v Vector) Bit(idx, pos int) int {
	n := v.Qubits()
	return (idx >> (n - 1 - pos)) & 1
}
