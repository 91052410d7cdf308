// Package circuit composes gates into layers and layers into runnable
// circuits. A layer is a bank of gates acting on disjoint, consecutive qubit
// groups in the same time step; its matrix is the Kronecker product of its
// members. A circuit is an ordered sequence of equal-width layers.
package circuit

import (
	"fmt"

	"github.com/aristath/qsim/internal/modules/gate"
	"github.com/aristath/qsim/internal/modules/register"
	"github.com/aristath/qsim/pkg/qmath"
)

// Layer is one time step of gates covering a full register, first gate on
// the most significant positions.
type Layer struct {
	gates []*gate.Gate
	width int
}

// NewLayer builds a layer from gates applied side by side. The combined
// width is the sum of the gate arities.
func NewLayer(gates ...*gate.Gate) (*Layer, error) {
	if len(gates) == 0 {
		return nil, fmt.Errorf("layer needs at least one gate")
	}
	width := 0
	for _, g := range gates {
		width += g.Arity()
	}
	return &Layer{gates: gates, width: width}, nil
}

// Width returns the number of qubits the layer spans.
func (l *Layer) Width() int { return l.width }

// Gate folds the layer into a single gate of the layer's width via
// Kronecker products. Unitarity is preserved, so the defensive check in the
// gate constructor always passes.
func (l *Layer) Gate() (*gate.Gate, error) {
	m := l.gates[0].Matrix()
	name := l.gates[0].Name()
	for _, g := range l.gates[1:] {
		m = qmath.Kron(m, g.Matrix())
		name += "⊗" + g.Name()
	}
	return gate.New(name, m)
}

// Circuit is an ordered sequence of layers of identical width.
type Circuit struct {
	layers []*Layer
	width  int
}

// New builds a circuit from layers applied in order.
func New(layers ...*Layer) (*Circuit, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("circuit needs at least one layer")
	}
	width := layers[0].Width()
	for i, l := range layers[1:] {
		if l.Width() != width {
			return nil, gate.DimensionMismatchError{
				Gate:   "circuit",
				Detail: fmt.Sprintf("layer %d spans %d qubit(s), expected %d", i+1, l.Width(), width),
			}
		}
	}
	return &Circuit{layers: layers, width: width}, nil
}

// Width returns the register size the circuit expects.
func (c *Circuit) Width() int { return c.width }

// Depth returns the number of layers.
func (c *Circuit) Depth() int { return len(c.layers) }

// Run applies the circuit's layers, in order, across the whole register.
func (c *Circuit) Run(r *register.Register) error {
	if r.Size() != c.width {
		return gate.DimensionMismatchError{
			Gate:   "circuit",
			Detail: fmt.Sprintf("register has %d qubit(s), circuit spans %d", r.Size(), c.width),
		}
	}

	positions := make([]int, c.width)
	for i := range positions {
		positions[i] = i
	}

	for i, l := range c.layers {
		g, err := l.Gate()
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		if err := r.ApplyGate(g, positions...); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}
