// Package catalog holds the built-in example circuits.
package catalog

import (
	"github.com/pkg/errors"

	"qtermsim/quantum"
)

var ErrUnknownExample = errors.New("unknown example")

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
)

type Example struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Difficulty  Difficulty      `json:"difficulty" yaml:"difficulty"`
	Circuit     quantum.Circuit `json:"circuit" yaml:"-"`
}

func gate(id string, t quantum.GateType, position int, qubits ...int) quantum.Gate {
	return quantum.Gate{ID: id, Type: t, Qubits: qubits, Position: position}
}

var examples = []Example{
	{
		ID:          "superposition",
		Name:        "Quantum Superposition",
		Description: "A Hadamard gate puts one qubit into an equal superposition of 0 and 1.",
		Difficulty:  Beginner,
		Circuit: quantum.Circuit{NumQubits: 1, Gates: []quantum.Gate{
			gate("gate-1", quantum.GateH, 0, 0),
		}},
	},
	{
		ID:          "bell-state",
		Name:        "Bell State (Entanglement)",
		Description: "An entangled pair: the two qubits always measure the same value.",
		Difficulty:  Beginner,
		Circuit: quantum.Circuit{NumQubits: 2, Gates: []quantum.Gate{
			gate("gate-1", quantum.GateH, 0, 0),
			gate("gate-2", quantum.GateCNOT, 1, 0, 1),
		}},
	},
	{
		ID:          "ghz-state",
		Name:        "GHZ State",
		Description: "A three-qubit entangled state where all qubits are correlated.",
		Difficulty:  Intermediate,
		Circuit: quantum.Circuit{NumQubits: 3, Gates: []quantum.Gate{
			gate("gate-1", quantum.GateH, 0, 0),
			gate("gate-2", quantum.GateCNOT, 1, 0, 1),
			gate("gate-3", quantum.GateCNOT, 2, 1, 2),
		}},
	},
	{
		ID:          "x-gate",
		Name:        "Quantum NOT Gate",
		Description: "The X gate flips a qubit from |0⟩ to |1⟩.",
		Difficulty:  Beginner,
		Circuit: quantum.Circuit{NumQubits: 1, Gates: []quantum.Gate{
			gate("gate-1", quantum.GateX, 0, 0),
		}},
	},
}

// All returns the examples in display order. Circuits are deep copies.
func All() []Example {
	out := make([]Example, len(examples))
	for i, ex := range examples {
		out[i] = withCircuitCopy(ex)
	}
	return out
}

// Get returns a copy of the example with the given id.
func Get(id string) (Example, error) {
	for _, ex := range examples {
		if ex.ID == id {
			return withCircuitCopy(ex), nil
		}
	}
	return Example{}, errors.Wrapf(ErrUnknownExample, "%q", id)
}

func withCircuitCopy(ex Example) Example {
	ex.Circuit = ex.Circuit.Clone()
	return ex
}
