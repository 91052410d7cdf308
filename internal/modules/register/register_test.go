package register

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/modules/gate"
	"github.com/aristath/qsim/internal/modules/measure"
	"github.com/aristath/qsim/internal/modules/state"
)

func newTestRegister(t *testing.T, bits []int, seed int64) *Register {
	t.Helper()
	r, err := FromBits(bits, measure.NewSampler(seed, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestNew_Empty(t *testing.T) {
	_, err := New(nil, measure.NewSampler(1, zerolog.Nop()), zerolog.Nop())
	assert.ErrorIs(t, err, ErrEmptyRegister)
}

func TestNew_TensorOrdering(t *testing.T) {
	// |1>|0> must put the amplitude at binary index 10 = 2.
	r := newTestRegister(t, []int{1, 0}, 1)
	v := r.StateVector()
	assert.Equal(t, complex128(1), v[2])
}

func TestStateVector_IsACopy(t *testing.T) {
	r := newTestRegister(t, []int{0}, 1)
	v := r.StateVector()
	v[0] = 0
	assert.Equal(t, complex128(1), r.StateVector()[0])
}

func TestApplyGate_XTwiceIsIdentity(t *testing.T) {
	r := newTestRegister(t, []int{0}, 1)

	require.NoError(t, r.ApplyGate(gate.X(), 0))
	assert.Equal(t, complex128(1), r.StateVector()[1])

	require.NoError(t, r.ApplyGate(gate.X(), 0))
	assert.Equal(t, complex128(1), r.StateVector()[0])

	outcome, err := r.Measure(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, outcome)
}

func TestApplyGate_RoundTripDagger(t *testing.T) {
	r := newTestRegister(t, []int{0, 1}, 1)
	require.NoError(t, r.ApplyGate(gate.Hadamard(), 0))
	require.NoError(t, r.ApplyGate(gate.Ising(0.8), 0, 1))
	mid := r.StateVector()

	require.NoError(t, r.ApplyGate(gate.Ising(0.8).Dagger(), 0, 1))
	require.NoError(t, r.ApplyGate(gate.Hadamard().Dagger(), 0))

	v := r.StateVector()
	assert.InDelta(t, 1.0, real(v[0]), 1e-9)
	for i := 1; i < len(v); i++ {
		assert.InDelta(t, 0, real(v[i]), 1e-9)
		assert.InDelta(t, 0, imag(v[i]), 1e-9)
	}
	assert.NotEqual(t, mid, v)
}

func TestBellState_Amplitudes(t *testing.T) {
	r := newTestRegister(t, []int{0, 0}, 1)
	require.NoError(t, r.ApplyGate(gate.Hadamard(), 0))
	require.NoError(t, r.ApplyGate(gate.CNOT(), 0, 1))

	v := r.StateVector()
	s := 1 / math.Sqrt2
	assert.InDelta(t, s, real(v[0]), state.Epsilon)
	assert.InDelta(t, 0, real(v[1]), state.Epsilon)
	assert.InDelta(t, 0, real(v[2]), state.Epsilon)
	assert.InDelta(t, s, real(v[3]), state.Epsilon)
}

func TestBellState_MeasureAllCorrelated(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		r := newTestRegister(t, []int{0, 0}, seed)
		require.NoError(t, r.ApplyGate(gate.Hadamard(), 0))
		require.NoError(t, r.ApplyGate(gate.CNOT(), 0, 1))

		outcome, err := r.MeasureAll()
		require.NoError(t, err)
		assert.Equal(t, outcome[0], outcome[1],
			"Bell state must yield (0,0) or (1,1), got %v with seed %d", outcome, seed)
	}
}

func TestPartialMeasurement_CollapsesPartner(t *testing.T) {
	r := newTestRegister(t, []int{0, 0}, 11)
	require.NoError(t, r.ApplyGate(gate.Hadamard(), 0))
	require.NoError(t, r.ApplyGate(gate.CNOT(), 0, 1))

	outcome, err := r.Measure(0)
	require.NoError(t, err)
	require.Len(t, outcome, 1)

	// The unmeasured qubit's distribution is now deterministic.
	probs := r.Probabilities()
	if outcome[0] == 0 {
		assert.InDelta(t, 1.0, probs[0], state.Epsilon)
	} else {
		assert.InDelta(t, 1.0, probs[3], state.Epsilon)
	}

	partner, err := r.Measure(1)
	require.NoError(t, err)
	assert.Equal(t, outcome[0], partner[0])
}

func TestMeasure_RecordsClassicalBits(t *testing.T) {
	r := newTestRegister(t, []int{1, 0}, 4)

	outcome, err := r.Measure(0)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, outcome)
	assert.Equal(t, map[int]int{0: 1}, r.MeasuredBits())

	// Re-measuring a classical position returns the recorded bit.
	again, err := r.Measure(0)
	require.NoError(t, err)
	assert.Equal(t, outcome, again)
}

func TestApplyGate_MeasuredPositionRejected(t *testing.T) {
	r := newTestRegister(t, []int{0, 0}, 2)
	_, err := r.Measure(0)
	require.NoError(t, err)

	err = r.ApplyGate(gate.X(), 0)
	assert.Error(t, err)

	// Gates on the unmeasured position still work.
	assert.NoError(t, r.ApplyGate(gate.X(), 1))
}

func TestMeasure_OutOfRange(t *testing.T) {
	r := newTestRegister(t, []int{0}, 2)
	_, err := r.Measure(3)
	require.Error(t, err)
	var dme gate.DimensionMismatchError
	assert.ErrorAs(t, err, &dme)
}

func TestHadamardMeasure_Frequencies(t *testing.T) {
	const trials = 10000
	ones := 0
	for i := 0; i < trials; i++ {
		r := newTestRegister(t, []int{0}, int64(i))
		require.NoError(t, r.ApplyGate(gate.Hadamard(), 0))
		outcome, err := r.Measure(0)
		require.NoError(t, err)
		ones += outcome[0]
	}

	// Chi-square with one degree of freedom; 250 is five sigma.
	expected := float64(trials) / 2
	chi2 := math.Pow(float64(ones)-expected, 2)/expected +
		math.Pow(float64(trials-ones)-expected, 2)/expected
	assert.Less(t, chi2, 25.0, "Hadamard outcomes should be uniform, got %d ones", ones)
}

func TestDeterministicSeeding(t *testing.T) {
	run := func(seed int64) []int {
		r := newTestRegister(t, []int{0, 0, 0}, seed)
		require.NoError(t, r.ApplyGate(gate.Hadamard(), 0))
		require.NoError(t, r.ApplyGate(gate.Hadamard(), 1))
		require.NoError(t, r.ApplyGate(gate.Hadamard(), 2))
		outcome, err := r.MeasureAll()
		require.NoError(t, err)
		return outcome
	}

	assert.Equal(t, run(77), run(77))
}

func TestToffoli_Semantics(t *testing.T) {
	// Both controls set: target flips.
	r := newTestRegister(t, []int{1, 1, 0}, 1)
	require.NoError(t, r.ApplyGate(gate.Toffoli(), 0, 1, 2))
	outcome, err := r.MeasureAll()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, outcome)

	// One control unset: target unchanged.
	r = newTestRegister(t, []int{1, 0, 0}, 1)
	require.NoError(t, r.ApplyGate(gate.Toffoli(), 0, 1, 2))
	outcome, err = r.MeasureAll()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, outcome)
}

func TestSwap_DistantPositions(t *testing.T) {
	r := newTestRegister(t, []int{1, 0, 0}, 1)
	require.NoError(t, r.ApplyGate(gate.Swap(), 0, 2))
	outcome, err := r.MeasureAll()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1}, outcome)
}
