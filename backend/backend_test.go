package backend

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/quantum"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		id    string
		noise float64
	}{
		{"simulator", 0},
		{"superconducting", 0.02},
		{"ion-trap", 0.005},
		{"Ion-Trap", 0.005},
	}
	for _, tt := range tests {
		b, err := Lookup(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.noise, b.NoiseLevel, tt.id)
	}

	_, err := Lookup("photonic")
	assert.True(t, errors.Is(err, ErrUnknownBackend))
	assert.Len(t, All(), 3)
}

func TestSummarize(t *testing.T) {
	bell := quantum.Circuit{NumQubits: 2}
	bell.AddGate(quantum.GateH, 0, 0)
	bell.AddGate(quantum.GateCNOT, 1, 0, 1)
	ideal := map[string]float64{"00": 0.5, "11": 0.5}

	sim, _ := Lookup("simulator")
	sc, _ := Lookup("superconducting")

	t.Run("ideal entangled run", func(t *testing.T) {
		got := Summarize(bell, sim, []quantum.MeasurementResult{
			{State: "00", Count: 520, Probability: 0.52},
			{State: "11", Count: 480, Probability: 0.48},
		}, ideal)
		assert.Contains(t, got, "entangled")
		assert.Contains(t, got, "|00⟩, occurring in 52.0% of shots")
		assert.NotContains(t, got, "theor")
	})

	t.Run("noisy but faithful", func(t *testing.T) {
		got := Summarize(bell, sc, []quantum.MeasurementResult{
			{State: "11", Count: 490, Probability: 0.49},
		}, ideal)
		assert.Contains(t, got, "closely match")
	})

	t.Run("noise dominates", func(t *testing.T) {
		got := Summarize(bell, sc, []quantum.MeasurementResult{
			{State: "00", Count: 300, Probability: 0.3},
		}, ideal)
		assert.Contains(t, got, "noise is visible")
	})

	t.Run("no measurements", func(t *testing.T) {
		c := quantum.Circuit{NumQubits: 1}
		c.AddGate(quantum.GateX, 0, 0)
		assert.Equal(t, "Your quantum circuit performed quantum operations on your qubits.", Summarize(c, sim, nil, nil))
	})
}
