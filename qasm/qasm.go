// Package qasm reads and writes the OpenQASM 2.0 subset that covers the
// simulator's gate catalog.
package qasm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"qtermsim/quantum"
)

// ErrSyntax marks a statement that is not valid QASM.
var ErrSyntax = errors.New("qasm syntax error")

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	gateRegex    = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	operandRegex = regexp.MustCompile(`^(\w+)\s*\[\s*(\d+)\s*\]$`)
)

var mnemonics = map[quantum.GateType]string{
	quantum.GateH:       "h",
	quantum.GateX:       "x",
	quantum.GateY:       "y",
	quantum.GateZ:       "z",
	quantum.GateS:       "s",
	quantum.GateT:       "t",
	quantum.GateSdg:     "sdg",
	quantum.GateTdg:     "tdg",
	quantum.GateRX:      "rx",
	quantum.GateRY:      "ry",
	quantum.GateRZ:      "rz",
	quantum.GateCNOT:    "cx",
	quantum.GateCZ:      "cz",
	quantum.GateSWAP:    "swap",
	quantum.GateToffoli: "ccx",
}

// Mnemonic returns the qelib1 name of t.
func Mnemonic(t quantum.GateType) string {
	return mnemonics[t]
}

// Format generates QASM 2.0 output from the circuit, gates in position order.
func Format(c quantum.Circuit) string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.NumQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", c.NumQubits)

	for _, g := range c.SortedGates() {
		sb.WriteString(FormatGate(g))
		sb.WriteByte('\n')
	}
	if len(c.Gates) > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString("measure q -> c;\n")
	return sb.String()
}

// FormatGate renders one gate statement, e.g. "rx(pi/2) q[0];".
func FormatGate(g quantum.Gate) string {
	var sb strings.Builder
	sb.WriteString(Mnemonic(g.Type))
	if g.Type.Parametrized() {
		fmt.Fprintf(&sb, "(%s)", FormatAngle(g.Angle()))
	}
	for i, q := range g.Qubits {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "q[%d]", q)
	}
	sb.WriteByte(';')
	return sb.String()
}

// parser accumulates a circuit while packing each gate into the earliest
// column where all of its qubits are free.
type parser struct {
	circuit  quantum.Circuit
	register string
	free     map[int]int
}

// Parse builds a circuit from QASM text. Declarations, measurements and
// barriers carry no unitary and are skipped. Errors name the line.
func Parse(src string) (quantum.Circuit, error) {
	p := parser{free: make(map[int]int)}

	for n, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := p.statement(stmt); err != nil {
				return quantum.Circuit{}, errors.Wrapf(err, "line %d", n+1)
			}
		}
	}

	if p.register == "" {
		return quantum.Circuit{}, errors.Wrap(ErrSyntax, "missing qreg declaration")
	}
	return p.circuit, nil
}

func (p *parser) statement(stmt string) error {
	switch strings.ToLower(strings.Fields(stmt)[0]) {
	case "openqasm", "include", "creg", "barrier", "measure":
		return nil
	case "qreg":
		return p.declare(stmt)
	}
	return p.gate(stmt)
}

func (p *parser) declare(stmt string) error {
	matches := qregRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return errors.Wrapf(ErrSyntax, "%q", stmt)
	}
	if p.register != "" {
		return errors.Wrapf(ErrSyntax, "second quantum register %q", matches[1])
	}
	n, err := strconv.Atoi(matches[2])
	if err != nil {
		return errors.Wrapf(ErrSyntax, "register size %q", matches[2])
	}
	c := quantum.Circuit{NumQubits: n}
	if err := c.Validate(); err != nil {
		return err
	}
	p.register = matches[1]
	p.circuit.NumQubits = n
	return nil
}

func (p *parser) gate(stmt string) error {
	matches := gateRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return errors.Wrapf(ErrSyntax, "%q", stmt)
	}
	t, err := quantum.ParseGateType(matches[1])
	if err != nil {
		return err
	}
	if p.register == "" {
		return errors.Wrapf(ErrSyntax, "%s before qreg declaration", matches[1])
	}

	g := quantum.Gate{ID: uuid.NewString(), Type: t}

	switch {
	case t.Parametrized():
		angle, err := ParseAngle(matches[2])
		if err != nil {
			return errors.Wrap(err, matches[1])
		}
		g.Params = &quantum.Params{Angle: angle}
	case matches[2] != "":
		return errors.Wrapf(ErrSyntax, "%s takes no parameters", matches[1])
	}

	for _, operand := range strings.Split(matches[3], ",") {
		om := operandRegex.FindStringSubmatch(strings.TrimSpace(operand))
		if om == nil {
			return errors.Wrapf(ErrSyntax, "operand %q", strings.TrimSpace(operand))
		}
		if om[1] != p.register {
			return errors.Wrapf(ErrSyntax, "unknown register %q", om[1])
		}
		q, err := strconv.Atoi(om[2])
		if err != nil {
			return errors.Wrapf(ErrSyntax, "qubit index %q", om[2])
		}
		g.Qubits = append(g.Qubits, q)
	}

	check := quantum.Circuit{NumQubits: p.circuit.NumQubits, Gates: []quantum.Gate{g}}
	if err := check.Validate(); err != nil {
		return err
	}

	for _, q := range g.Qubits {
		g.Position = max(g.Position, p.free[q])
	}
	for _, q := range g.Qubits {
		p.free[q] = g.Position + 1
	}
	p.circuit.Gates = append(p.circuit.Gates, g)
	return nil
}
