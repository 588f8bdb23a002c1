package runner

import (
	"time"

	"qtermsim/quantum"
)

// StateSnapshot is the exported ideal state of a run.
type StateSnapshot struct {
	Amplitudes    []quantum.Amplitude `json:"amplitudes" yaml:"amplitudes"`
	Probabilities []float64           `json:"probabilities" yaml:"probabilities"`
}

// Expected is what theory predicts for the circuit.
type Expected struct {
	StateVector   StateSnapshot      `json:"stateVector" yaml:"state_vector"`
	Probabilities map[string]float64 `json:"probabilities" yaml:"probabilities"`
}

// Actual holds sampled outcomes. Noisy is empty when the run had no noise.
type Actual struct {
	Shots        int                         `json:"shots" yaml:"shots"`
	NoiseLevel   float64                     `json:"noiseLevel" yaml:"noise_level"`
	Measurements []quantum.MeasurementResult `json:"measurements" yaml:"measurements"`
	Noisy        []quantum.MeasurementResult `json:"noisyMeasurements,omitempty" yaml:"noisy_measurements,omitempty"`
}

// Observed returns the outcomes a user of the backend would see.
func (a Actual) Observed() []quantum.MeasurementResult {
	if len(a.Noisy) > 0 {
		return a.Noisy
	}
	return a.Measurements
}

type Metadata struct {
	ExecutionTimeMs float64   `json:"executionTime" yaml:"execution_time_ms"`
	CircuitDepth    int       `json:"circuitDepth" yaml:"circuit_depth"`
	GateCount       int       `json:"gateCount" yaml:"gate_count"`
	Seed            uint64    `json:"seed" yaml:"seed"`
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
}

// Execution is the full record of one circuit run.
type Execution struct {
	ID                 string                     `json:"executionId" yaml:"execution_id"`
	Circuit            quantum.Circuit            `json:"circuit" yaml:"circuit"`
	Backend            string                     `json:"quantumComputer" yaml:"backend"`
	Expected           Expected                   `json:"expectedResults" yaml:"expected"`
	Actual             Actual                     `json:"actualResults" yaml:"actual"`
	Bloch              []quantum.BlochVector      `json:"blochVectors" yaml:"bloch_vectors"`
	QubitProbabilities []quantum.QubitProbability `json:"qubitProbabilities" yaml:"qubit_probabilities"`
	Metadata           Metadata                   `json:"metadata" yaml:"metadata"`
	Summary            string                     `json:"summary" yaml:"summary"`
}
