// Package measure implements Born-rule measurement sampling and wavefunction
// collapse over amplitude vectors.
package measure

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/modules/state"
)

// SamplingError reports a drawn outcome whose probability mass is too close
// to zero to collapse onto. With a consistent distribution this only arises
// from floating-point edge mass.
type SamplingError struct {
	Outcome     []int
	Probability float64
}

func (e SamplingError) Error() string {
	return fmt.Sprintf("cannot collapse onto outcome %v with probability %.3e", e.Outcome, e.Probability)
}

// minOutcomeProbability guards the collapse renormalization against division
// by a vanishing norm.
const minOutcomeProbability = 1e-12

// Sampler draws measurement outcomes from a state vector. The random source
// is explicit and seedable so measurement sequences are reproducible.
// A Sampler is not safe for concurrent use; each owner keeps its own.
type Sampler struct {
	rng *rand.Rand
	log zerolog.Logger
}

// NewSampler creates a sampler seeded with the given value.
func NewSampler(seed int64, log zerolog.Logger) *Sampler {
	return &Sampler{
		rng: rand.New(rand.NewSource(seed)),
		log: log.With().Str("component", "sampler").Logger(),
	}
}

// Sample measures the given qubit positions of v jointly: it marginalizes
// the Born-rule probabilities over the measured positions, draws one
// assignment, and returns the classical bits together with the collapsed,
// renormalized vector. The input vector is not modified.
func (s *Sampler) Sample(v state.Vector, positions []int) ([]int, state.Vector, error) {
	k := len(positions)
	probs := make([]float64, 1<<k)
	for i, a := range v {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p == 0 {
			continue
		}
		probs[s.outcomeIndex(v, i, positions)] += p
	}

	drawn := s.draw(probs)
	p := probs[drawn]
	outcome := bitsOf(drawn, k)
	if p < minOutcomeProbability {
		return nil, nil, SamplingError{Outcome: outcome, Probability: p}
	}

	collapsed := make(state.Vector, len(v))
	scale := complex(1/math.Sqrt(p), 0)
	for i, a := range v {
		if s.outcomeIndex(v, i, positions) == drawn {
			collapsed[i] = a * scale
		}
	}

	s.log.Debug().
		Ints("positions", positions).
		Ints("outcome", outcome).
		Float64("probability", p).
		Msg("Measurement sampled")

	return outcome, collapsed, nil
}

// outcomeIndex packs the bits of basis index i at the measured positions
// into a compact outcome index, first position most significant.
func (s *Sampler) outcomeIndex(v state.Vector, i int, positions []int) int {
	out := 0
	for j, p := range positions {
		out |= v.Bit(i, p) << (len(positions) - 1 - j)
	}
	return out
}

// draw picks an index from the discrete distribution by cumulative sum over
// a single uniform variate. Trailing float error is absorbed by the last
// nonzero bucket.
func (s *Sampler) draw(probs []float64) int {
	r := s.rng.Float64()
	var cum float64
	last := 0
	for i, p := range probs {
		if p == 0 {
			continue
		}
		last = i
		cum += p
		if r < cum {
			return i
		}
	}
	return last
}

func bitsOf(idx, k int) []int {
	bits := make([]int, k)
	for j := 0; j < k; j++ {
		bits[j] = (idx >> (k - 1 - j)) & 1
	}
	return bits
}
