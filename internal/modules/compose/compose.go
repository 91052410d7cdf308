// Package compose expands a k-qubit gate into the full 2^N x 2^N operator
// acting on an N-qubit register.
//
// Contiguous, in-order targets expand as a plain Kronecker sandwich
// I_before ⊗ G ⊗ I_after. Arbitrary targets reduce to the contiguous case by
// conjugating with the basis permutation that moves the target qubits to the
// top bit positions; both steps preserve unitarity. The operator is dense:
// building it costs O(4^N) space and time, which keeps the algebra easy to
// inspect but limits practical register sizes. Expansion context is computed
// per call and never persisted.
package compose

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/qsim/internal/modules/gate"
	"github.com/aristath/qsim/pkg/qmath"
)

// Expand builds the full-register operator for g acting on the given qubit
// positions (position 0 is the most significant bit) in a register of n
// qubits. For controlled gates the leading positions are the controls, per
// the gate's own metadata; the block structure is already part of the gate
// matrix.
func Expand(g *gate.Gate, positions []int, n int) (*mat.CDense, error) {
	if err := validate(g, positions, n); err != nil {
		return nil, err
	}

	if contiguous(positions) {
		return expandContiguous(g, positions[0], n), nil
	}
	return expandPermuted(g, positions, n), nil
}

func validate(g *gate.Gate, positions []int, n int) error {
	if len(positions) != g.Arity() {
		return gate.DimensionMismatchError{
			Gate:   g.Name(),
			Detail: fmt.Sprintf("gate acts on %d qubit(s) but %d position(s) given", g.Arity(), len(positions)),
		}
	}
	seen := make(map[int]bool, len(positions))
	for _, p := range positions {
		if p < 0 || p >= n {
			return gate.DimensionMismatchError{
				Gate:   g.Name(),
				Detail: fmt.Sprintf("position %d out of range for register of %d qubit(s)", p, n),
			}
		}
		if seen[p] {
			return gate.DimensionMismatchError{
				Gate:   g.Name(),
				Detail: fmt.Sprintf("duplicate position %d", p),
			}
		}
		seen[p] = true
	}
	return nil
}

// contiguous reports whether positions form an ascending run p, p+1, ...
func contiguous(positions []int) bool {
	for i := 1; i < len(positions); i++ {
		if positions[i] != positions[i-1]+1 {
			return false
		}
	}
	return true
}

// expandContiguous builds I_before ⊗ G ⊗ I_after for a gate occupying
// positions start..start+k-1 in natural order.
func expandContiguous(g *gate.Gate, start, n int) *mat.CDense {
	full := g.Matrix()
	if start > 0 {
		full = qmath.Kron(qmath.Identity(1<<start), full)
	}
	after := n - start - g.Arity()
	if after > 0 {
		full = qmath.Kron(full, qmath.Identity(1<<after))
	}
	return full
}

// expandPermuted handles out-of-order or scattered target positions. Let P
// be the basis permutation that moves the target qubits (in the order given)
// to the top bit positions and the rest, in ascending order, below them.
// The full operator is P† (G ⊗ I) P; since P only relabels basis states the
// conjugation is realized as an index remap of the front-expanded operator.
func expandPermuted(g *gate.Gate, positions []int, n int) *mat.CDense {
	dim := 1 << n
	front := qmath.Kron(g.Matrix(), qmath.Identity(1<<(n-g.Arity())))

	perm := permutation(positions, n)
	full := mat.NewCDense(dim, dim, nil)
	for a := 0; a < dim; a++ {
		pa := perm[a]
		for b := 0; b < dim; b++ {
			if v := front.At(pa, perm[b]); v != 0 {
				full.Set(a, b, v)
			}
		}
	}
	return full
}

// permutation maps each basis index to its image under the reordering that
// puts the target positions' bits first (most significant), followed by the
// remaining positions in ascending order.
func permutation(positions []int, n int) []int {
	isTarget := make([]bool, n)
	order := make([]int, 0, n)
	order = append(order, positions...)
	for _, p := range positions {
		isTarget[p] = true
	}
	for p := 0; p < n; p++ {
		if !isTarget[p] {
			order = append(order, p)
		}
	}

	dim := 1 << n
	perm := make([]int, dim)
	for i := 0; i < dim; i++ {
		var out int
		for slot, p := range order {
			bit := (i >> (n - 1 - p)) & 1
			out |= bit << (n - 1 - slot)
		}
		perm[i] = out
	}
	return perm
}
