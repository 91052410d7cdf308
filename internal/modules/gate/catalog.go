package gate

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Standard single- and multi-qubit gates. Each factory returns a fresh Gate
// value; the underlying matrices are validated on every construction.

// Identity returns the single-qubit identity gate.
func Identity() *Gate {
	return must(New("identity", mat.NewCDense(2, 2, []complex128{
		1, 0,
		0, 1,
	})))
}

// X returns the Pauli-X (NOT) gate.
func X() *Gate {
	return must(New("x", mat.NewCDense(2, 2, []complex128{
		0, 1,
		1, 0,
	})))
}

// Y returns the Pauli-Y gate.
func Y() *Gate {
	return must(New("y", mat.NewCDense(2, 2, []complex128{
		0, complex(0, -1),
		complex(0, 1), 0,
	})))
}

// Z returns the Pauli-Z gate.
func Z() *Gate {
	return must(New("z", mat.NewCDense(2, 2, []complex128{
		1, 0,
		0, -1,
	})))
}

// Hadamard returns the Hadamard gate, mapping basis states to equal
// superpositions.
func Hadamard() *Gate {
	s := complex(1/math.Sqrt2, 0)
	return must(New("hadamard", mat.NewCDense(2, 2, []complex128{
		s, s,
		s, -s,
	})))
}

// SquareNot returns the square root of the NOT gate: applying it twice
// equals X.
func SquareNot() *Gate {
	p := complex(0.5, 0.5)  // (1+i)/2
	m := complex(0.5, -0.5) // (1-i)/2
	return must(New("squarenot", mat.NewCDense(2, 2, []complex128{
		p, m,
		m, p,
	})))
}

// Phase returns the S gate, a quarter-turn phase on |1>.
func Phase() *Gate {
	return must(New("phase", mat.NewCDense(2, 2, []complex128{
		1, 0,
		0, complex(0, 1),
	})))
}

// Pi8 returns the T (pi/8) gate, an eighth-turn phase on |1>.
func Pi8() *Gate {
	return must(New("pi8", mat.NewCDense(2, 2, []complex128{
		1, 0,
		0, cmplx.Exp(complex(0, math.Pi/4)),
	})))
}

// PhaseShift returns the rotation gate applying phase e^(i*theta) to |1>.
func PhaseShift(theta float64) *Gate {
	g := must(New("phaseshift", mat.NewCDense(2, 2, []complex128{
		1, 0,
		0, cmplx.Exp(complex(0, theta)),
	})))
	g.name = fmt.Sprintf("phaseshift(%g)", theta)
	return g
}

// Swap returns the two-qubit SWAP gate.
func Swap() *Gate {
	return must(New("swap", mat.NewCDense(4, 4, []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	})))
}

// SquareSwap returns the square root of the SWAP gate.
func SquareSwap() *Gate {
	p := complex(0.5, 0.5)
	m := complex(0.5, -0.5)
	return must(New("squareswap", mat.NewCDense(4, 4, []complex128{
		1, 0, 0, 0,
		0, p, m, 0,
		0, m, p, 0,
		0, 0, 0, 1,
	})))
}

// CNOT returns the controlled-NOT gate; the first position is the control.
func CNOT() *Gate {
	return must(Controlled(X(), 1))
}

// CZ returns the controlled-Z gate.
func CZ() *Gate {
	return must(Controlled(Z(), 1))
}

// CPhase returns the controlled-phase (controlled-S) gate.
func CPhase() *Gate {
	return must(Controlled(Phase(), 1))
}

// Toffoli returns the doubly-controlled NOT gate; the first two positions
// are controls.
func Toffoli() *Gate {
	g := must(Controlled(X(), 2))
	g.name = "toffoli"
	return g
}

// Fredkin returns the controlled-SWAP gate; the first position is the
// control.
func Fredkin() *Gate {
	g := must(Controlled(Swap(), 1))
	g.name = "fredkin"
	return g
}

// Ising returns the two-qubit Ising coupling gate XX(phi).
func Ising(phi float64) *Gate {
	s := complex(1/math.Sqrt2, 0)
	ni := complex(0, -1)
	g := must(New("ising", mat.NewCDense(4, 4, []complex128{
		s, 0, 0, s * ni * cmplx.Exp(complex(0, phi)),
		0, s, s * ni, 0,
		0, s * ni, s, 0,
		s * ni * cmplx.Exp(complex(0, -phi)), 0, 0, s,
	})))
	g.name = fmt.Sprintf("ising(%g)", phi)
	return g
}

// Custom validates an arbitrary unitary matrix as a gate.
func Custom(name string, m *mat.CDense) (*Gate, error) {
	return New(name, m)
}

// FromName resolves a catalog gate by name. Parameterized gates
// (phaseshift, ising) read their angle from param; the rest ignore it.
func FromName(name string, param float64) (*Gate, error) {
	switch strings.ToLower(name) {
	case "identity", "i":
		return Identity(), nil
	case "x", "not":
		return X(), nil
	case "y":
		return Y(), nil
	case "z":
		return Z(), nil
	case "hadamard", "h":
		return Hadamard(), nil
	case "squarenot":
		return SquareNot(), nil
	case "phase", "s":
		return Phase(), nil
	case "pi8", "t":
		return Pi8(), nil
	case "phaseshift":
		return PhaseShift(param), nil
	case "swap":
		return Swap(), nil
	case "squareswap":
		return SquareSwap(), nil
	case "cnot", "cx":
		return CNOT(), nil
	case "cz":
		return CZ(), nil
	case "cphase":
		return CPhase(), nil
	case "toffoli", "ccx":
		return Toffoli(), nil
	case "fredkin", "cswap":
		return Fredkin(), nil
	case "ising":
		return Ising(param), nil
	default:
		return nil, fmt.Errorf("unknown gate %q", name)
	}
}
