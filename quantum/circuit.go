package quantum

import (
	"slices"

	"github.com/pkg/errors"
)

// Params carries the optional numeric parameters of a gate.
type Params struct {
	Angle float64 `json:"angle" yaml:"angle"`
}

// Gate is one placed operation. Position orders gates in time; gates
// sharing a position keep their list order.
type Gate struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Type     GateType `json:"type" yaml:"type"`
	Qubits   []int    `json:"qubitIndices" yaml:"qubitIndices,flow"`
	Position int      `json:"position" yaml:"position"`
	Params   *Params  `json:"params,omitempty" yaml:"params,omitempty"`
}

// Angle returns the rotation angle, 0 when none was given.
func (g Gate) Angle() float64 {
	if g.Params == nil {
		return 0
	}
	return g.Params.Angle
}

// References reports whether the gate acts on qubit.
func (g Gate) References(qubit int) bool {
	return slices.Contains(g.Qubits, qubit)
}

func (g Gate) validate(numQubits int) error {
	if !g.Type.Valid() {
		return errors.Wrapf(ErrUnsupportedGate, "gate %q type %d", g.ID, int(g.Type))
	}
	if len(g.Qubits) != g.Type.Arity() {
		return errors.Wrapf(ErrInvalidGateArity, "gate %q: %s takes %d qubits, got %d",
			g.ID, g.Type, g.Type.Arity(), len(g.Qubits))
	}
	for i, q := range g.Qubits {
		if q < 0 || q >= numQubits {
			return errors.Wrapf(ErrInvalidQubitIndex, "gate %q: %s qubit %d not in [0,%d)",
				g.ID, g.Type, q, numQubits)
		}
		if slices.Contains(g.Qubits[:i], q) {
			return errors.Wrapf(ErrInvalidGateArity, "gate %q: %s repeats qubit %d", g.ID, g.Type, q)
		}
	}
	return nil
}

// Circuit is a qubit count plus an unordered gate list.
type Circuit struct {
	NumQubits int    `json:"numQubits" yaml:"numQubits"`
	Gates     []Gate `json:"gates" yaml:"gates"`
}

// Validate checks every gate before anything is simulated.
func (c *Circuit) Validate() error {
	if err := checkQubitCount(c.NumQubits); err != nil {
		return err
	}
	for _, g := range c.Gates {
		if err := g.validate(c.NumQubits); err != nil {
			return err
		}
	}
	return nil
}

// AddGate appends a gate acting on qubits at the given position.
func (c *Circuit) AddGate(t GateType, position int, qubits ...int) {
	c.Gates = append(c.Gates, Gate{
		Type:     t,
		Qubits:   qubits,
		Position: position,
	})
}

// AddRotation appends a parametrized single-qubit gate.
func (c *Circuit) AddRotation(t GateType, position int, angle float64, qubit int) {
	c.Gates = append(c.Gates, Gate{
		Type:     t,
		Qubits:   []int{qubit},
		Position: position,
		Params:   &Params{Angle: angle},
	})
}

// GateAt returns the gate touching qubit at position, or nil.
func (c *Circuit) GateAt(position, qubit int) *Gate {
	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Position == position && g.References(qubit) {
			return g
		}
	}
	return nil
}

// RemoveGateAt deletes every gate touching qubit at position.
func (c *Circuit) RemoveGateAt(position, qubit int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		return g.Position == position && g.References(qubit)
	})
}

// RemoveGatesOnQubit deletes every gate touching qubit.
func (c *Circuit) RemoveGatesOnQubit(qubit int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		return g.References(qubit)
	})
}

// CanPlaceAt reports whether none of qubits is occupied at position.
func (c *Circuit) CanPlaceAt(position int, qubits []int) bool {
	for _, q := range qubits {
		if c.GateAt(position, q) != nil {
			return false
		}
	}
	return true
}

// MaxPosition returns the highest occupied position, or -1 when empty.
func (c *Circuit) MaxPosition() int {
	maxPos := -1
	for _, g := range c.Gates {
		maxPos = max(maxPos, g.Position)
	}
	return maxPos
}

// SortedGates returns a copy of the gate list stably sorted by position.
func (c *Circuit) SortedGates() []Gate {
	gates := slices.Clone(c.Gates)
	slices.SortStableFunc(gates, func(a, b Gate) int {
		return a.Position - b.Position
	})
	return gates
}

// Clone returns a copy that shares no qubit slices or params with c.
func (c *Circuit) Clone() Circuit {
	out := *c
	gates := make([]Gate, len(c.Gates))
	for i, g := range c.Gates {
		g.Qubits = slices.Clone(g.Qubits)
		if g.Params != nil {
			p := *g.Params
			g.Params = &p
		}
		gates[i] = g
	}
	out.Gates = gates
	return out
}

func (c *Circuit) GateCount() int {
	return len(c.Gates)
}

// Depth is the number of layers after packing each gate into the
// earliest layer its qubits are free.
func (c *Circuit) Depth() int {
	free := make(map[int]int)
	depth := 0
	for _, g := range c.SortedGates() {
		layer := 0
		for _, q := range g.Qubits {
			layer = max(layer, free[q])
		}
		for _, q := range g.Qubits {
			free[q] = layer + 1
		}
		depth = max(depth, layer+1)
	}
	return depth
}
