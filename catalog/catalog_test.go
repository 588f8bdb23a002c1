package catalog

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/quantum"
)

func TestExamplesSimulate(t *testing.T) {
	want := map[string]map[string]float64{
		"superposition": {"0": 0.5, "1": 0.5},
		"bell-state":    {"00": 0.5, "11": 0.5},
		"ghz-state":     {"000": 0.5, "111": 0.5},
		"x-gate":        {"1": 1},
	}

	all := All()
	require.Len(t, all, len(want))
	for _, ex := range all {
		t.Run(ex.ID, func(t *testing.T) {
			res, err := quantum.Simulate(ex.Circuit)
			require.NoError(t, err)
			got := res.ProbabilityMap()
			require.Len(t, got, len(want[ex.ID]))
			for state, p := range want[ex.ID] {
				assert.InDelta(t, p, got[state], 1e-9, state)
			}
		})
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ex, err := Get("bell-state")
	require.NoError(t, err)
	ex.Circuit.Gates[1].Qubits[1] = 0
	ex.Circuit.AddGate(quantum.GateX, 5, 0)

	again, err := Get("bell-state")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, again.Circuit.Gates[1].Qubits)
	assert.Len(t, again.Circuit.Gates, 2)

	_, err = Get("teleport")
	assert.True(t, errors.Is(err, ErrUnknownExample))
}
