// Package register provides the N-qubit composite quantum system: one
// coherent amplitude vector built by tensoring qubits, with gate application
// and measurement on top.
//
// A Register is single-writer: it is not safe for concurrent mutation
// without external synchronization.
package register

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/modules/compose"
	"github.com/aristath/qsim/internal/modules/gate"
	"github.com/aristath/qsim/internal/modules/measure"
	"github.com/aristath/qsim/internal/modules/state"
	"github.com/aristath/qsim/pkg/qmath"
)

// ErrEmptyRegister is returned when a register is requested for zero qubits.
var ErrEmptyRegister = errors.New("register needs at least one qubit")

// driftTolerance is the safety bound on accumulated floating-point error.
// Norm deviations within state.Epsilon pass untouched; deviations up to this
// bound are silently renormalized; anything larger is fatal.
const driftTolerance = 1e-6

// NormalizationDriftError reports a post-operation state norm outside the
// safety tolerance, indicating a bug or unstable gate composition rather
// than ordinary rounding.
type NormalizationDriftError struct {
	Norm float64
}

func (e NormalizationDriftError) Error() string {
	return fmt.Sprintf("state norm drifted to %.12f, beyond safety tolerance %g", e.Norm, driftTolerance)
}

// Register is an N-qubit quantum system. The qubit count is fixed for its
// lifetime; once qubits are entangled their sub-states are not separately
// addressable. Gate application is unitary and reversible; measurement is
// probabilistic and irreversible, and measured positions stay classical for
// the rest of the register's life.
type Register struct {
	n        int
	vector   state.Vector
	measured map[int]int
	sampler  *measure.Sampler
	log      zerolog.Logger
}

// New tensors the given qubits, in order, into a single coherent register.
// The first qubit occupies position 0, the most significant bit of the
// basis index.
func New(qubits []state.Qubit, sampler *measure.Sampler, log zerolog.Logger) (*Register, error) {
	if len(qubits) == 0 {
		return nil, ErrEmptyRegister
	}

	v := qubits[0].Vector()
	for _, q := range qubits[1:] {
		v = v.Tensor(q.Vector())
	}

	r := &Register{
		n:        len(qubits),
		vector:   v,
		measured: make(map[int]int),
		sampler:  sampler,
		log:      log.With().Str("component", "register").Int("qubits", len(qubits)).Logger(),
	}
	r.log.Debug().Msg("Register created")
	return r, nil
}

// FromVector wraps an existing amplitude vector as a register. The vector
// length must be a power of two and the norm must be 1 within
// state.Epsilon. The vector is copied; no classical bits carry over.
func FromVector(v state.Vector, sampler *measure.Sampler, log zerolog.Logger) (*Register, error) {
	if len(v) < 2 || len(v)&(len(v)-1) != 0 {
		return nil, fmt.Errorf("amplitude vector length must be a power of two >= 2, got %d", len(v))
	}
	if norm := v.Norm(); math.Abs(norm-1) > state.Epsilon {
		return nil, state.InvalidStateError{Norm: norm}
	}

	n := 0
	for d := len(v); d > 1; d >>= 1 {
		n++
	}
	return &Register{
		n:        n,
		vector:   v.Clone(),
		measured: make(map[int]int),
		sampler:  sampler,
		log:      log.With().Str("component", "register").Int("qubits", n).Logger(),
	}, nil
}

// FromBits builds a register of deterministic basis-state qubits.
func FromBits(bits []int, sampler *measure.Sampler, log zerolog.Logger) (*Register, error) {
	qubits := make([]state.Qubit, 0, len(bits))
	for _, b := range bits {
		q, err := state.FromBit(b)
		if err != nil {
			return nil, err
		}
		qubits = append(qubits, q)
	}
	return New(qubits, sampler, log)
}

// Size returns the number of qubits.
func (r *Register) Size() int { return r.n }

// StateVector returns a snapshot copy of the current amplitude vector.
func (r *Register) StateVector() state.Vector {
	return r.vector.Clone()
}

// Probabilities returns the Born-rule probability of each basis state.
func (r *Register) Probabilities() []float64 {
	return r.vector.Probabilities()
}

// MeasuredBits returns the classical outcomes recorded so far, keyed by
// position. The map is a copy.
func (r *Register) MeasuredBits() map[int]int {
	out := make(map[int]int, len(r.measured))
	for p, b := range r.measured {
		out[p] = b
	}
	return out
}

// ApplyGate expands g over the given positions and multiplies it into the
// register state in place. Positions that have already been measured are
// classical and can no longer be operated on.
func (r *Register) ApplyGate(g *gate.Gate, positions ...int) error {
	for _, p := range positions {
		if _, done := r.measured[p]; done {
			return fmt.Errorf("position %d was measured and is classical", p)
		}
	}

	op, err := compose.Expand(g, positions, r.n)
	if err != nil {
		return err
	}

	r.vector = state.Vector(qmath.MulVec(op, r.vector))

	if err := r.checkNorm(); err != nil {
		return err
	}

	r.log.Debug().
		Str("gate", g.Name()).
		Ints("positions", positions).
		Msg("Gate applied")
	return nil
}

// checkNorm guards against accumulated floating-point drift after an
// in-place multiply.
func (r *Register) checkNorm() error {
	norm := r.vector.Norm()
	diff := math.Abs(norm - 1)
	switch {
	case diff <= state.Epsilon:
		return nil
	case diff <= driftTolerance:
		scale := complex(1/norm, 0)
		for i := range r.vector {
			r.vector[i] *= scale
		}
		r.log.Debug().Float64("norm", norm).Msg("State renormalized after drift")
		return nil
	default:
		return NormalizationDriftError{Norm: norm}
	}
}

// Measure samples the given positions jointly, collapses the register state
// and returns the classical outcome bits in position order. Irreversible.
// Re-measuring a classical position returns its recorded bit.
func (r *Register) Measure(positions ...int) ([]int, error) {
	toSample := make([]int, 0, len(positions))
	for _, p := range positions {
		if p < 0 || p >= r.n {
			return nil, gate.DimensionMismatchError{
				Gate:   "measure",
				Detail: fmt.Sprintf("position %d out of range for register of %d qubit(s)", p, r.n),
			}
		}
		if _, done := r.measured[p]; !done {
			toSample = append(toSample, p)
		}
	}

	if len(toSample) > 0 {
		outcome, collapsed, err := r.sampler.Sample(r.vector, toSample)
		if err != nil {
			return nil, err
		}
		r.vector = collapsed
		for i, p := range toSample {
			r.measured[p] = outcome[i]
		}
		r.log.Info().
			Ints("positions", toSample).
			Ints("outcome", outcome).
			Msg("Register measured")
	}

	result := make([]int, len(positions))
	for i, p := range positions {
		result[i] = r.measured[p]
	}
	return result, nil
}

// MeasureAll measures every position in one joint sampling pass, so
// entangled correlations survive into the outcome.
func (r *Register) MeasureAll() ([]int, error) {
	positions := make([]int, r.n)
	for i := range positions {
		positions[i] = i
	}
	return r.Measure(positions...)
}
