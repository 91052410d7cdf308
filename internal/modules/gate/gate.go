// Package gate defines unitary quantum gate operators and the standard gate
// catalog. A gate is an immutable 2^k x 2^k unitary matrix with a symbolic
// identity; it never mutates after construction.
package gate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/qsim/internal/modules/state"
	"github.com/aristath/qsim/pkg/qmath"
)

// NonUnitaryError reports a gate matrix that fails the unitarity check
// M*M† = I within state.Epsilon.
type NonUnitaryError struct {
	Name      string
	Deviation float64
}

func (e NonUnitaryError) Error() string {
	return fmt.Sprintf("gate %q is not unitary: max deviation from identity %.3e", e.Name, e.Deviation)
}

// DimensionMismatchError reports a gate applied to or expanded for a space
// of the wrong dimension.
type DimensionMismatchError struct {
	Gate   string
	Detail string
}

func (e DimensionMismatchError) Error() string {
	return fmt.Sprintf("gate %q: %s", e.Gate, e.Detail)
}

// Gate is an immutable unitary operator on k qubits. Controlled gates record
// how many of their leading qubit positions act as controls; the composer
// relies on that metadata when wiring gates across a register.
type Gate struct {
	name     string
	arity    int
	controls int
	matrix   *mat.CDense
}

// New validates m as a unitary matrix of power-of-two dimension and wraps it
// as a gate. The matrix is copied; the caller keeps ownership of m.
func New(name string, m *mat.CDense) (*Gate, error) {
	r, c := m.Dims()
	if r != c || r < 2 || r&(r-1) != 0 {
		return nil, DimensionMismatchError{
			Gate:   name,
			Detail: fmt.Sprintf("matrix must be square with power-of-two dimension >= 2, got %dx%d", r, c),
		}
	}
	if dev := qmath.UnitaryDeviation(m); dev > state.Epsilon {
		return nil, NonUnitaryError{Name: name, Deviation: dev}
	}

	arity := 0
	for d := r; d > 1; d >>= 1 {
		arity++
	}
	return &Gate{name: name, arity: arity, matrix: qmath.Clone(m)}, nil
}

// must wraps catalog construction. The catalog matrices are unitary by
// proof; the check in New still runs as a defensive guard.
func must(g *Gate, err error) *Gate {
	if err != nil {
		panic(fmt.Sprintf("gate catalog: %v", err))
	}
	return g
}

// Name returns the gate's symbolic name.
func (g *Gate) Name() string { return g.name }

// Arity returns the number of qubits the gate acts on.
func (g *Gate) Arity() int { return g.arity }

// Controls returns how many leading qubit positions are controls.
// Zero for plain gates.
func (g *Gate) Controls() int { return g.controls }

// Dim returns the matrix dimension 2^arity.
func (g *Gate) Dim() int {
	r, _ := g.matrix.Dims()
	return r
}

// Matrix returns a copy of the gate's unitary matrix.
func (g *Gate) Matrix() *mat.CDense {
	return qmath.Clone(g.matrix)
}

// Apply returns the matrix-vector product M*v as a new vector. Pure: neither
// the gate nor the input vector is modified.
func (g *Gate) Apply(v state.Vector) (state.Vector, error) {
	if len(v) != g.Dim() {
		return nil, DimensionMismatchError{
			Gate:   g.name,
			Detail: fmt.Sprintf("vector dimension %d does not match gate dimension %d", len(v), g.Dim()),
		}
	}
	return state.Vector(qmath.MulVec(g.matrix, v)), nil
}

// Dagger returns the conjugate-transpose gate, the inverse of a unitary.
func (g *Gate) Dagger() *Gate {
	return &Gate{
		name:     g.name + "†",
		arity:    g.arity,
		controls: g.controls,
		matrix:   qmath.Dagger(g.matrix),
	}
}

// Power returns the gate raised to the n-th power. Negative n raises the
// inverse; Power(0) is the identity on the same number of qubits.
func (g *Gate) Power(n int) *Gate {
	base := g.matrix
	if n < 0 {
		base = qmath.Dagger(g.matrix)
		n = -n
	}
	return &Gate{
		name:     fmt.Sprintf("%s^%d", g.name, n),
		arity:    g.arity,
		controls: g.controls,
		matrix:   qmath.Power(base, n),
	}
}

// Controlled wraps g with numControls control qubits, producing the
// block-structured operator that is the identity on every subspace where a
// control is 0 and g on the all-controls-1 subspace. This is how CNOT,
// Toffoli, CZ and Fredkin are defined; the block form is built once here,
// not re-derived per application.
func Controlled(g *Gate, numControls int) (*Gate, error) {
	if numControls < 1 {
		return nil, fmt.Errorf("controlled gate needs at least one control qubit, got %d", numControls)
	}

	dim := g.Dim() << numControls
	m := qmath.Identity(dim)
	offset := dim - g.Dim()
	for i := 0; i < g.Dim(); i++ {
		for j := 0; j < g.Dim(); j++ {
			m.Set(offset+i, offset+j, g.matrix.At(i, j))
		}
	}

	wrapped, err := New(fmt.Sprintf("c%s", g.name), m)
	if err != nil {
		return nil, err
	}
	wrapped.controls = numControls + g.controls
	return wrapped, nil
}
