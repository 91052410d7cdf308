package compose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/modules/gate"
	"github.com/aristath/qsim/pkg/qmath"
)

func TestExpand_SingleQubitContiguous(t *testing.T) {
	// X on position 1 of a 2-qubit register: |00> -> |01>
	op, err := Expand(gate.X(), []int{1}, 2)
	require.NoError(t, err)

	v := qmath.MulVec(op, []complex128{1, 0, 0, 0})
	assert.Equal(t, []complex128{0, 1, 0, 0}, v)

	// X on position 0: |00> -> |10>
	op, err = Expand(gate.X(), []int{0}, 2)
	require.NoError(t, err)
	v = qmath.MulVec(op, []complex128{1, 0, 0, 0})
	assert.Equal(t, []complex128{0, 0, 1, 0}, v)
}

func TestExpand_CNOTNaturalOrder(t *testing.T) {
	// CNOT control=0, target=1 in a 2-qubit register equals the raw matrix.
	op, err := Expand(gate.CNOT(), []int{0, 1}, 2)
	require.NoError(t, err)
	assert.True(t, qmath.EqualApprox(op, gate.CNOT().Matrix(), 1e-12))

	// |10> -> |11>
	v := qmath.MulVec(op, []complex128{0, 0, 1, 0})
	assert.Equal(t, []complex128{0, 0, 0, 1}, v)
}

func TestExpand_CNOTReversed(t *testing.T) {
	// CNOT with control=1, target=0: |01> -> |11>, |11> -> |01>.
	op, err := Expand(gate.CNOT(), []int{1, 0}, 2)
	require.NoError(t, err)

	v := qmath.MulVec(op, []complex128{0, 1, 0, 0})
	assert.Equal(t, []complex128{0, 0, 0, 1}, v)

	v = qmath.MulVec(op, []complex128{0, 0, 0, 1})
	assert.Equal(t, []complex128{0, 1, 0, 0}, v)

	// |10> untouched: control (position 1) is 0.
	v = qmath.MulVec(op, []complex128{0, 0, 1, 0})
	assert.Equal(t, []complex128{0, 0, 1, 0}, v)
}

func TestExpand_DistantControl(t *testing.T) {
	// CNOT control=0, target=2 in a 3-qubit register.
	op, err := Expand(gate.CNOT(), []int{0, 2}, 3)
	require.NoError(t, err)

	// |100> (index 4) -> |101> (index 5)
	in := make([]complex128, 8)
	in[4] = 1
	v := qmath.MulVec(op, in)
	assert.Equal(t, complex128(1), v[5])

	// |010> (index 2) untouched: control is 0.
	in = make([]complex128, 8)
	in[2] = 1
	v = qmath.MulVec(op, in)
	assert.Equal(t, complex128(1), v[2])
}

func TestExpand_PreservesUnitarity(t *testing.T) {
	cases := []struct {
		g         *gate.Gate
		positions []int
		n         int
	}{
		{gate.Hadamard(), []int{1}, 3},
		{gate.CNOT(), []int{2, 0}, 3},
		{gate.Swap(), []int{0, 2}, 3},
		{gate.Toffoli(), []int{3, 1, 0}, 4},
		{gate.Ising(0.6), []int{1, 3}, 4},
	}

	for _, tc := range cases {
		op, err := Expand(tc.g, tc.positions, tc.n)
		require.NoError(t, err)
		assert.LessOrEqual(t, qmath.UnitaryDeviation(op), 1e-9,
			"expanded %s on %v should stay unitary", tc.g.Name(), tc.positions)
	}
}

func TestExpand_SwapEquivalence(t *testing.T) {
	// SWAP on (1, 0) equals SWAP on (0, 1): the gate is symmetric.
	a, err := Expand(gate.Swap(), []int{0, 1}, 2)
	require.NoError(t, err)
	b, err := Expand(gate.Swap(), []int{1, 0}, 2)
	require.NoError(t, err)
	assert.True(t, qmath.EqualApprox(a, b, 1e-12))
}

func TestExpand_BellPreparation(t *testing.T) {
	// H on 0 then CNOT(0,1) from |00> must give the Bell state.
	v := []complex128{1, 0, 0, 0}

	h, err := Expand(gate.Hadamard(), []int{0}, 2)
	require.NoError(t, err)
	v = qmath.MulVec(h, v)

	cx, err := Expand(gate.CNOT(), []int{0, 1}, 2)
	require.NoError(t, err)
	v = qmath.MulVec(cx, v)

	s := 1 / math.Sqrt2
	assert.InDelta(t, s, real(v[0]), 1e-12)
	assert.InDelta(t, 0, real(v[1]), 1e-12)
	assert.InDelta(t, 0, real(v[2]), 1e-12)
	assert.InDelta(t, s, real(v[3]), 1e-12)
}

func TestExpand_Errors(t *testing.T) {
	var dme gate.DimensionMismatchError

	// Wrong position count.
	_, err := Expand(gate.CNOT(), []int{0}, 2)
	require.Error(t, err)
	assert.ErrorAs(t, err, &dme)

	// Position out of range.
	_, err = Expand(gate.X(), []int{2}, 2)
	require.Error(t, err)
	assert.ErrorAs(t, err, &dme)

	// Duplicate positions.
	_, err = Expand(gate.CNOT(), []int{1, 1}, 2)
	require.Error(t, err)
	assert.ErrorAs(t, err, &dme)
}
