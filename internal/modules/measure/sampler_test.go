package measure

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/modules/state"
)

func TestSample_DeterministicBasisState(t *testing.T) {
	s := NewSampler(1, zerolog.Nop())

	// |10>: measuring both positions must always yield (1, 0).
	v := state.Vector{0, 0, 1, 0}
	for i := 0; i < 20; i++ {
		outcome, collapsed, err := s.Sample(v, []int{0, 1})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0}, outcome)
		assert.Equal(t, v, collapsed)
	}
}

func TestSample_DoesNotMutateInput(t *testing.T) {
	s := NewSampler(7, zerolog.Nop())
	h := complex(1/math.Sqrt2, 0)
	v := state.Vector{h, h}

	_, _, err := s.Sample(v, []int{0})
	require.NoError(t, err)
	assert.Equal(t, state.Vector{h, h}, v)
}

func TestSample_CollapseRenormalizes(t *testing.T) {
	s := NewSampler(3, zerolog.Nop())
	h := complex(1/math.Sqrt2, 0)

	// Bell state: measuring position 0 collapses position 1 to match.
	v := state.Vector{h, 0, 0, h}
	outcome, collapsed, err := s.Sample(v, []int{0})
	require.NoError(t, err)
	require.Len(t, outcome, 1)

	assert.InDelta(t, 1.0, collapsed.Norm(), state.Epsilon)
	if outcome[0] == 0 {
		assert.InDelta(t, 1.0, real(collapsed[0]), 1e-12)
		assert.Equal(t, complex128(0), collapsed[3])
	} else {
		assert.InDelta(t, 1.0, real(collapsed[3]), 1e-12)
		assert.Equal(t, complex128(0), collapsed[0])
	}
}

func TestSample_JointOutcomesEntangled(t *testing.T) {
	s := NewSampler(42, zerolog.Nop())
	h := complex(1/math.Sqrt2, 0)
	v := state.Vector{h, 0, 0, h}

	for i := 0; i < 200; i++ {
		outcome, _, err := s.Sample(v, []int{0, 1})
		require.NoError(t, err)
		assert.Equal(t, outcome[0], outcome[1],
			"entangled Bell state must never yield mixed outcomes")
	}
}

func TestSample_SeededReproducibility(t *testing.T) {
	h := complex(1/math.Sqrt2, 0)
	v := state.Vector{h, h}

	run := func(seed int64) []int {
		s := NewSampler(seed, zerolog.Nop())
		var outcomes []int
		for i := 0; i < 50; i++ {
			outcome, _, err := s.Sample(v, []int{0})
			require.NoError(t, err)
			outcomes = append(outcomes, outcome[0])
		}
		return outcomes
	}

	assert.Equal(t, run(99), run(99), "same seed must reproduce the outcome sequence")
	assert.NotEqual(t, run(1), run(2), "different seeds should diverge")
}

func TestSample_UniformFrequencies(t *testing.T) {
	s := NewSampler(123, zerolog.Nop())
	h := complex(1/math.Sqrt2, 0)
	v := state.Vector{h, h}

	const trials = 10000
	ones := 0
	for i := 0; i < trials; i++ {
		outcome, _, err := s.Sample(v, []int{0})
		require.NoError(t, err)
		ones += outcome[0]
	}

	// Binomial(10000, 0.5): five standard deviations is 250.
	assert.InDelta(t, trials/2, ones, 250)
}

func TestSample_PartialPositions(t *testing.T) {
	s := NewSampler(5, zerolog.Nop())

	// |01>: measuring only position 1 must yield 1 and leave the state intact.
	v := state.Vector{0, 1, 0, 0}
	outcome, collapsed, err := s.Sample(v, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, outcome)
	assert.Equal(t, v, collapsed)
}
