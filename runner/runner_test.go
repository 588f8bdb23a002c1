package runner

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/exp/maps"
	"gonum.org/v1/gonum/floats"

	"qtermsim/backend"
	"qtermsim/catalog"
	"qtermsim/quantum"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustBackend(t *testing.T, id string) backend.Backend {
	t.Helper()
	b, err := backend.Lookup(id)
	require.NoError(t, err)
	return b
}

func bellCircuit(t *testing.T) quantum.Circuit {
	t.Helper()
	ex, err := catalog.Get("bell-state")
	require.NoError(t, err)
	return ex.Circuit
}

func TestExecuteIdeal(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := New(zap.New(core), 1)

	exec, err := r.Execute(context.Background(), bellCircuit(t), Options{
		Shots:   1000,
		Backend: mustBackend(t, "simulator"),
		Seed:    11,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(exec.ID, "exec-"))
	assert.Equal(t, "simulator", exec.Backend)
	assert.True(t, floats.EqualApprox([]float64{0.5, 0, 0, 0.5}, exec.Expected.StateVector.Probabilities, 1e-12))
	assert.Len(t, exec.Expected.StateVector.Amplitudes, 4)
	keys := maps.Keys(exec.Expected.Probabilities)
	slices.Sort(keys)
	assert.Equal(t, []string{"00", "11"}, keys)

	assert.Empty(t, exec.Actual.Noisy)
	assert.Equal(t, 1000, exec.Actual.Shots)
	total := 0
	for _, m := range exec.Actual.Measurements {
		total += m.Count
		assert.Contains(t, []string{"00", "11"}, m.State)
	}
	assert.Equal(t, 1000, total)

	require.Len(t, exec.Bloch, 2)
	assert.InDelta(t, 0, exec.Bloch[0].Z, 1e-9)
	assert.Equal(t, 2, exec.Metadata.CircuitDepth)
	assert.Equal(t, 2, exec.Metadata.GateCount)
	assert.Equal(t, uint64(11), exec.Metadata.Seed)
	assert.Contains(t, exec.Summary, "entangled")

	entries := logs.FilterMessage("execution finished").All()
	require.Len(t, entries, 1)
	assert.Equal(t, exec.ID, entries[0].ContextMap()["id"])
	assert.Equal(t, int64(1000), entries[0].ContextMap()["shots"])
}

func TestExecuteNoisyBackend(t *testing.T) {
	r := New(nil, 1)
	exec, err := r.Execute(context.Background(), bellCircuit(t), Options{
		Shots:   2000,
		Backend: mustBackend(t, "superconducting"),
		Seed:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.02, exec.Actual.NoiseLevel)
	require.NotEmpty(t, exec.Actual.Noisy)
	assert.Greater(t, len(exec.Actual.Noisy), 2, "bit flips should produce 01 or 10")
	assert.Equal(t, exec.Actual.Noisy, exec.Actual.Observed())
}

func TestExecuteNoiseOverride(t *testing.T) {
	r := New(nil, 1)
	zero := 0.0
	exec, err := r.Execute(context.Background(), bellCircuit(t), Options{
		Shots:      100,
		Backend:    mustBackend(t, "ion-trap"),
		NoiseLevel: &zero,
		Seed:       1,
	})
	require.NoError(t, err)
	assert.Empty(t, exec.Actual.Noisy)
	assert.NotContains(t, exec.Summary, "theor")

	bad := 1.5
	_, err = r.Execute(context.Background(), bellCircuit(t), Options{Shots: 100, NoiseLevel: &bad, Seed: 1})
	assert.True(t, errors.Is(err, quantum.ErrInvalidNoiseLevel))
}

func TestExecuteErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := New(zap.New(core), 1)
	opts := Options{Shots: 10, Backend: mustBackend(t, "simulator"), Seed: 1}

	bad := quantum.Circuit{NumQubits: 1, Gates: []quantum.Gate{{Type: quantum.GateCNOT, Qubits: []int{0, 1}}}}
	_, err := r.Execute(context.Background(), bad, opts)
	assert.True(t, errors.Is(err, quantum.ErrInvalidGateArity) || errors.Is(err, quantum.ErrInvalidQubitIndex), "got %v", err)
	assert.Equal(t, 1, logs.FilterMessage("simulation rejected").Len())

	opts.Shots = 0
	_, err = r.Execute(context.Background(), bellCircuit(t), opts)
	assert.True(t, errors.Is(err, quantum.ErrInvalidShotCount))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Execute(ctx, bellCircuit(t), Options{Shots: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatch(t *testing.T) {
	var circuits []quantum.Circuit
	for _, ex := range catalog.All() {
		circuits = append(circuits, ex.Circuit)
	}

	r := New(nil, 2)
	opts := Options{Shots: 256, Backend: mustBackend(t, "ion-trap"), Seed: 100}
	first, err := r.RunBatch(context.Background(), circuits, opts)
	require.NoError(t, err)
	require.Len(t, first, len(circuits))
	for i, exec := range first {
		require.NotNil(t, exec)
		assert.Equal(t, circuits[i].NumQubits, exec.Circuit.NumQubits)
		assert.Equal(t, uint64(100+i), exec.Metadata.Seed)
	}

	second, err := r.RunBatch(context.Background(), circuits, opts)
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].Actual.Observed(), second[i].Actual.Observed())
		assert.NotEqual(t, first[i].ID, second[i].ID)
	}
}

func TestRunBatchStopsOnError(t *testing.T) {
	circuits := []quantum.Circuit{
		bellCircuit(t),
		{NumQubits: 0},
		bellCircuit(t),
	}
	r := New(nil, 1)
	_, err := r.RunBatch(context.Background(), circuits, Options{Shots: 10, Seed: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, quantum.ErrInvalidQubitCount))
	assert.Contains(t, err.Error(), "circuit 1")
}
