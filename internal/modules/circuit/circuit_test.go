package circuit

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/modules/gate"
	"github.com/aristath/qsim/internal/modules/measure"
	"github.com/aristath/qsim/internal/modules/register"
	"github.com/aristath/qsim/internal/modules/state"
)

func newTestRegister(t *testing.T, bits []int, seed int64) *register.Register {
	t.Helper()
	r, err := register.FromBits(bits, measure.NewSampler(seed, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestNewLayer_Empty(t *testing.T) {
	_, err := NewLayer()
	assert.Error(t, err)
}

func TestLayer_Width(t *testing.T) {
	l, err := NewLayer(gate.Hadamard(), gate.CNOT())
	require.NoError(t, err)
	assert.Equal(t, 3, l.Width())
}

func TestLayer_GateIsKroneckerProduct(t *testing.T) {
	l, err := NewLayer(gate.X(), gate.Identity())
	require.NoError(t, err)

	g, err := l.Gate()
	require.NoError(t, err)
	assert.Equal(t, 2, g.Arity())

	// X⊗I maps |00> to |10>.
	out, err := g.Apply(state.Vector{1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, complex128(1), out[2])
}

func TestNew_WidthMismatch(t *testing.T) {
	one, err := NewLayer(gate.Hadamard())
	require.NoError(t, err)
	two, err := NewLayer(gate.Swap())
	require.NoError(t, err)

	_, err = New(one, two)
	require.Error(t, err)
	var dme gate.DimensionMismatchError
	assert.ErrorAs(t, err, &dme)
}

func TestRun_RegisterSizeMismatch(t *testing.T) {
	l, err := NewLayer(gate.Hadamard())
	require.NoError(t, err)
	c, err := New(l)
	require.NoError(t, err)

	err = c.Run(newTestRegister(t, []int{0, 0}, 1))
	require.Error(t, err)
	var dme gate.DimensionMismatchError
	assert.ErrorAs(t, err, &dme)
}

func TestRun_BellPreparation(t *testing.T) {
	first, err := NewLayer(gate.Hadamard(), gate.Identity())
	require.NoError(t, err)
	second, err := NewLayer(gate.CNOT())
	require.NoError(t, err)
	c, err := New(first, second)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Width())
	assert.Equal(t, 2, c.Depth())

	r := newTestRegister(t, []int{0, 0}, 1)
	require.NoError(t, c.Run(r))

	v := r.StateVector()
	s := 1 / math.Sqrt2
	assert.InDelta(t, s, real(v[0]), state.Epsilon)
	assert.InDelta(t, 0, real(v[1]), state.Epsilon)
	assert.InDelta(t, 0, real(v[2]), state.Epsilon)
	assert.InDelta(t, s, real(v[3]), state.Epsilon)
}

func TestRun_LayerOrderMatters(t *testing.T) {
	hFirst, err := NewLayer(gate.Hadamard())
	require.NoError(t, err)
	xSecond, err := NewLayer(gate.X())
	require.NoError(t, err)

	hx, err := New(hFirst, xSecond)
	require.NoError(t, err)
	xh, err := New(xSecond, hFirst)
	require.NoError(t, err)

	a := newTestRegister(t, []int{0}, 1)
	require.NoError(t, hx.Run(a))
	b := newTestRegister(t, []int{0}, 1)
	require.NoError(t, xh.Run(b))

	// X·H|0> has a sign flip relative to H·X|0>.
	va, vb := a.StateVector(), b.StateVector()
	s := 1 / math.Sqrt2
	assert.InDelta(t, s, real(va[0]), state.Epsilon)
	assert.InDelta(t, s, real(va[1]), state.Epsilon)
	assert.InDelta(t, s, real(vb[0]), state.Epsilon)
	assert.InDelta(t, -s, real(vb[1]), state.Epsilon)
}

func TestRun_GHZState(t *testing.T) {
	first, err := NewLayer(gate.Hadamard(), gate.Identity(), gate.Identity())
	require.NoError(t, err)
	second, err := NewLayer(gate.CNOT(), gate.Identity())
	require.NoError(t, err)
	third, err := NewLayer(gate.Identity(), gate.CNOT())
	require.NoError(t, err)
	c, err := New(first, second, third)
	require.NoError(t, err)

	r := newTestRegister(t, []int{0, 0, 0}, 1)
	require.NoError(t, c.Run(r))

	v := r.StateVector()
	s := 1 / math.Sqrt2
	assert.InDelta(t, s, real(v[0]), state.Epsilon)
	assert.InDelta(t, s, real(v[7]), state.Epsilon)
	for _, i := range []int{1, 2, 3, 4, 5, 6} {
		assert.InDelta(t, 0, real(v[i]), state.Epsilon)
	}

	outcome, err := r.MeasureAll()
	require.NoError(t, err)
	assert.Equal(t, outcome[0], outcome[1])
	assert.Equal(t, outcome[1], outcome[2])
}
