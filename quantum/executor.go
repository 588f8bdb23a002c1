package quantum

import (
	"encoding/json"

	"gonum.org/v1/gonum/floats"
)

// probabilityFloor hides numerically-zero entries from ProbabilityMap.
const probabilityFloor = 1e-12

// Result is the outcome of one simulation run.
type Result struct {
	State         *StateVector
	Probabilities []float64
}

// Simulate runs every gate of c in position order, starting from |0…0⟩.
// Each call allocates its own state vector; nothing is retained.
func Simulate(c Circuit) (*Result, error) {
	return SimulateUpTo(c, -1)
}

// SimulateUpTo runs only the gates whose position is <= upTo. A negative
// upTo runs the whole circuit.
func SimulateUpTo(c Circuit, upTo int) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	state, err := NewStateVector(c.NumQubits)
	if err != nil {
		return nil, err
	}
	for _, g := range c.SortedGates() {
		if upTo >= 0 && g.Position > upTo {
			break
		}
		state.apply(g)
	}
	return &Result{
		State:         state,
		Probabilities: state.Probabilities(),
	}, nil
}

func (r *Result) NumQubits() int {
	return r.State.NumQubits
}

func (r *Result) Amplitudes() []Amplitude {
	amps := make([]Amplitude, len(r.State.Amplitudes))
	for i, a := range r.State.Amplitudes {
		amps[i] = ToAmplitude(a)
	}
	return amps
}

// TotalProbability is 1 up to rounding for any valid circuit.
func (r *Result) TotalProbability() float64 {
	return floats.Sum(r.Probabilities)
}

// ProbabilityMap keys the non-negligible probabilities by bitstring.
func (r *Result) ProbabilityMap() map[string]float64 {
	out := make(map[string]float64)
	for i, p := range r.Probabilities {
		if p > probabilityFloor {
			out[Bitstring(i, r.NumQubits())] = p
		}
	}
	return out
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amplitudes    []Amplitude `json:"amplitudes"`
		Probabilities []float64   `json:"probabilities"`
	}{r.Amplitudes(), r.Probabilities})
}
