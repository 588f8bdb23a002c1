package quantum

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bell() Circuit {
	c := Circuit{NumQubits: 2}
	c.AddGate(GateH, 0, 0)
	c.AddGate(GateCNOT, 1, 0, 1)
	return c
}

func TestSimulateEmptyCircuit(t *testing.T) {
	for n := 1; n <= 4; n++ {
		res, err := Simulate(Circuit{NumQubits: n})
		require.NoError(t, err)
		assert.Equal(t, 1.0, res.Probabilities[0])
		assert.Len(t, res.Probabilities, 1<<n)
		assert.Equal(t, 1.0, res.TotalProbability())
	}
}

func TestSimulateBellState(t *testing.T) {
	res, err := Simulate(bell())
	require.NoError(t, err)
	assertAmplitudes(t, []Complex{complex(f, 0), 0, 0, complex(f, 0)}, res.State)
	assert.InDeltaSlice(t, []float64{0.5, 0, 0, 0.5}, res.Probabilities, tol)

	m := res.ProbabilityMap()
	assert.Len(t, m, 2)
	assert.InDelta(t, 0.5, m["00"], tol)
	assert.InDelta(t, 0.5, m["11"], tol)
}

func TestSimulateBigEndianOrdering(t *testing.T) {
	c := Circuit{NumQubits: 3}
	c.AddGate(GateX, 0, 0)
	res, err := Simulate(c)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Probabilities[0b100])
	assert.Equal(t, map[string]float64{"100": 1}, res.ProbabilityMap())

	qp := res.State.QubitProbabilities()
	require.Len(t, qp, 3)
	assert.Equal(t, QubitProbability{Prob0: 0, Prob1: 1}, qp[0])
	assert.Equal(t, QubitProbability{Prob0: 1, Prob1: 0}, qp[1])
	assert.Equal(t, QubitProbability{Prob0: 1, Prob1: 0}, qp[2])
}

func TestSimulateToffoliAllOnes(t *testing.T) {
	c := Circuit{NumQubits: 3}
	c.AddGate(GateX, 0, 0)
	c.AddGate(GateX, 0, 1)
	c.AddGate(GateToffoli, 1, 0, 1, 2)
	res, err := Simulate(c)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Probabilities[7], tol)
}

func TestSimulateOrdersByPosition(t *testing.T) {
	// listed out of order: X at position 2, H at position 0
	c := Circuit{NumQubits: 1}
	c.AddGate(GateX, 2, 0)
	c.AddGate(GateH, 0, 0)
	res, err := Simulate(c)
	require.NoError(t, err)
	assertAmplitudes(t, []Complex{complex(f, 0), complex(f, 0)}, res.State)

	c = Circuit{NumQubits: 1}
	c.AddGate(GateH, 2, 0)
	c.AddGate(GateX, 0, 0)
	res, err = Simulate(c)
	require.NoError(t, err)
	assertAmplitudes(t, []Complex{complex(f, 0), complex(-f, 0)}, res.State)
}

func TestSimulateKeepsListOrderWithinPosition(t *testing.T) {
	c := Circuit{NumQubits: 1}
	c.AddGate(GateX, 0, 0)
	c.AddGate(GateH, 0, 0)
	res, err := Simulate(c)
	require.NoError(t, err)
	assertAmplitudes(t, []Complex{complex(f, 0), complex(-f, 0)}, res.State)
}

func TestSimulateNormalization(t *testing.T) {
	c := Circuit{NumQubits: 4}
	pos := 0
	for _, gt := range AllGates {
		switch gt.Arity() {
		case 1:
			if gt.Parametrized() {
				c.AddRotation(gt, pos, 0.37*float64(pos+1), pos%4)
			} else {
				c.AddGate(gt, pos, pos%4)
			}
		case 2:
			c.AddGate(gt, pos, pos%4, (pos+1)%4)
		case 3:
			c.AddGate(gt, pos, pos%4, (pos+1)%4, (pos+2)%4)
		}
		pos++
	}
	for q := 0; q < 4; q++ {
		c.AddGate(GateH, pos, q)
	}

	res, err := Simulate(c)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.TotalProbability(), tol)
	for _, p := range res.Probabilities {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0+tol)
	}
}

func TestSimulateRejectsInvalidCircuit(t *testing.T) {
	tests := []struct {
		name string
		c    Circuit
		want error
	}{
		{"zero qubits", Circuit{NumQubits: 0}, ErrInvalidQubitCount},
		{"too many qubits", Circuit{NumQubits: MaxQubits + 1}, ErrInvalidQubitCount},
		{"qubit out of range", Circuit{NumQubits: 2, Gates: []Gate{
			{Type: GateH, Qubits: []int{0}},
			{Type: GateX, Qubits: []int{2}, Position: 1},
		}}, ErrInvalidQubitIndex},
		{"bad type", Circuit{NumQubits: 1, Gates: []Gate{{Type: GateType(42), Qubits: []int{0}}}}, ErrUnsupportedGate},
		{"cnot onto itself", Circuit{NumQubits: 2, Gates: []Gate{{Type: GateCNOT, Qubits: []int{0, 0}}}}, ErrInvalidGateArity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Simulate(tt.c)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSimulateUpTo(t *testing.T) {
	c := bell()
	res, err := SimulateUpTo(c, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0, 0.5, 0}, res.Probabilities, tol)

	res, err = SimulateUpTo(c, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0, 0, 0.5}, res.Probabilities, tol)

	res, err = SimulateUpTo(c, -1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0, 0, 0.5}, res.Probabilities, tol)
}

func TestCircuitEditing(t *testing.T) {
	c := Circuit{NumQubits: 3}
	assert.Equal(t, -1, c.MaxPosition())
	assert.Equal(t, 0, c.Depth())

	c.AddGate(GateH, 0, 0)
	c.AddGate(GateH, 0, 1)
	c.AddGate(GateCNOT, 3, 0, 2)
	assert.Equal(t, 3, c.MaxPosition())
	assert.Equal(t, 3, c.GateCount())
	assert.Equal(t, 2, c.Depth())

	assert.NotNil(t, c.GateAt(3, 2))
	assert.Nil(t, c.GateAt(3, 1))
	assert.False(t, c.CanPlaceAt(0, []int{1, 2}))
	assert.True(t, c.CanPlaceAt(1, []int{1, 2}))

	c.RemoveGateAt(3, 2)
	assert.Equal(t, 2, c.GateCount())
	c.RemoveGatesOnQubit(1)
	require.Len(t, c.Gates, 1)
	assert.Equal(t, []int{0}, c.Gates[0].Qubits)
}

func TestCircuitCloneIsDeep(t *testing.T) {
	c := Circuit{NumQubits: 2}
	c.AddRotation(GateRY, 0, 0.5, 1)
	c.AddGate(GateCNOT, 1, 0, 1)

	cp := c.Clone()
	cp.Gates[0].Params.Angle = 2
	cp.Gates[1].Qubits[0] = 1
	cp.AddGate(GateX, 2, 0)

	assert.Equal(t, 0.5, c.Gates[0].Angle())
	assert.Equal(t, []int{0, 1}, c.Gates[1].Qubits)
	assert.Len(t, c.Gates, 2)
}

func TestResultJSON(t *testing.T) {
	c := Circuit{NumQubits: 1}
	c.AddGate(GateX, 0, 0)
	res, err := Simulate(c)
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"amplitudes": [{"real": 0, "imaginary": 0}, {"real": 1, "imaginary": 0}],
		"probabilities": [0, 1]
	}`, string(raw))
}

func TestAmplitudeRoundTrip(t *testing.T) {
	a := ToAmplitude(complex(0.25, -math.Pi))
	assert.Equal(t, Amplitude{Real: 0.25, Imaginary: -math.Pi}, a)
	assert.Equal(t, complex(0.25, -math.Pi), a.Complex())
}
