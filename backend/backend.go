// Package backend describes the execution targets a circuit can be run on.
// Every target is simulated; hardware targets differ only in their readout
// noise.
package backend

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"qtermsim/quantum"
)

// ErrUnknownBackend is returned by Lookup for an unregistered id.
var ErrUnknownBackend = errors.New("unknown backend")

// Kind classifies a backend.
type Kind string

const (
	KindSimulator       Kind = "simulator"
	KindSuperconducting Kind = "superconducting"
	KindIonTrap         Kind = "ion-trap"
)

type Backend struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Kind            Kind     `json:"type" yaml:"type"`
	Provider        string   `json:"provider" yaml:"provider"`
	Qubits          int      `json:"qubits" yaml:"qubits"`
	NoiseLevel      float64  `json:"noiseLevel" yaml:"noise_level"`
	Description     string   `json:"description" yaml:"description"`
	Characteristics []string `json:"characteristics" yaml:"characteristics"`
}

// Noisy reports whether results from b are degraded by readout noise.
func (b Backend) Noisy() bool {
	return b.NoiseLevel > 0
}

var backends = []Backend{
	{
		ID:          string(KindSimulator),
		Name:        "Quantum Simulator",
		Kind:        KindSimulator,
		Provider:    "Local",
		Qubits:      quantum.MaxQubits,
		NoiseLevel:  0,
		Description: "Perfect quantum computer simulation without noise",
		Characteristics: []string{
			"No noise or errors",
			"Instant results",
			"Shows ideal quantum behavior",
		},
	},
	{
		ID:          string(KindSuperconducting),
		Name:        "Superconducting processor",
		Kind:        KindSuperconducting,
		Provider:    "Simulated",
		Qubits:      quantum.MaxQubits,
		NoiseLevel:  0.02,
		Description: "Superconducting qubits cooled to near absolute zero",
		Characteristics: []string{
			"Fast gate operations",
			"Short coherence times",
			"Subject to readout noise",
		},
	},
	{
		ID:          string(KindIonTrap),
		Name:        "Ion trap processor",
		Kind:        KindIonTrap,
		Provider:    "Simulated",
		Qubits:      quantum.MaxQubits,
		NoiseLevel:  0.005,
		Description: "Trapped ions controlled by lasers",
		Characteristics: []string{
			"All-to-all qubit connectivity",
			"Long coherence times",
			"High-fidelity operations",
		},
	},
}

// All returns the registered backends in display order.
func All() []Backend {
	out := make([]Backend, len(backends))
	copy(out, backends)
	return out
}

// Lookup finds a backend by id, ignoring case.
func Lookup(id string) (Backend, error) {
	for _, b := range backends {
		if strings.EqualFold(b.ID, id) {
			return b, nil
		}
	}
	return Backend{}, errors.Wrapf(ErrUnknownBackend, "%q", id)
}

// fidelityThreshold separates "matches theory" from "noise visible" in Summarize.
const fidelityThreshold = 0.8

// Summarize describes a run in plain language. For noisy backends it also
// reports whether the top outcome still tracks the ideal distribution.
func Summarize(c quantum.Circuit, b Backend, measurements []quantum.MeasurementResult, ideal map[string]float64) string {
	var hasH, hasCNOT bool
	for _, g := range c.Gates {
		switch g.Type {
		case quantum.GateH:
			hasH = true
		case quantum.GateCNOT:
			hasCNOT = true
		}
	}

	var sb strings.Builder
	sb.WriteString("Your quantum circuit ")
	switch {
	case hasH && hasCNOT:
		sb.WriteString("created an entangled state using superposition and entanglement. ")
	case hasH:
		sb.WriteString("created superposition, putting your qubits into a state of being both 0 and 1 at once. ")
	case hasCNOT:
		sb.WriteString("used entanglement to connect your qubits together. ")
	default:
		sb.WriteString("performed quantum operations on your qubits. ")
	}

	if len(measurements) == 0 {
		return strings.TrimSpace(sb.String())
	}
	top := measurements[0]
	fmt.Fprintf(&sb, "The most common measurement was |%s⟩, occurring in %.1f%% of shots. ", top.State, top.Probability*100)

	if b.Noisy() {
		expected := ideal[top.State]
		if expected == 0 {
			expected = 1
		}
		if top.Probability/expected < fidelityThreshold {
			sb.WriteString("Readout noise is visible: the measurements differ from theory.")
		} else {
			sb.WriteString("The results closely match theoretical predictions.")
		}
	}
	return strings.TrimSpace(sb.String())
}
