package quantum

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// GateType enumerates the fixed gate catalog. The zero value is not a gate.
type GateType int

const (
	GateH GateType = iota + 1
	GateX
	GateY
	GateZ
	GateS
	GateT
	GateSdg
	GateTdg
	GateRX
	GateRY
	GateRZ
	GateCNOT
	GateCZ
	GateSWAP
	GateToffoli
)

// AllGates lists the catalog in display order.
var AllGates = []GateType{
	GateH, GateX, GateY, GateZ, GateS, GateT, GateSdg, GateTdg,
	GateRX, GateRY, GateRZ, GateCNOT, GateCZ, GateSWAP, GateToffoli,
}

var gateNames = map[GateType]string{
	GateH:       "H",
	GateX:       "X",
	GateY:       "Y",
	GateZ:       "Z",
	GateS:       "S",
	GateT:       "T",
	GateSdg:     "Sdg",
	GateTdg:     "Tdg",
	GateRX:      "RX",
	GateRY:      "RY",
	GateRZ:      "RZ",
	GateCNOT:    "CNOT",
	GateCZ:      "CZ",
	GateSWAP:    "SWAP",
	GateToffoli: "Toffoli",
}

// gateAliases maps upper-cased names, including QASM spellings, to gate types.
var gateAliases = map[string]GateType{
	"H":       GateH,
	"X":       GateX,
	"NOT":     GateX,
	"Y":       GateY,
	"Z":       GateZ,
	"S":       GateS,
	"T":       GateT,
	"SDG":     GateSdg,
	"TDG":     GateTdg,
	"RX":      GateRX,
	"RY":      GateRY,
	"RZ":      GateRZ,
	"CNOT":    GateCNOT,
	"CX":      GateCNOT,
	"CZ":      GateCZ,
	"SWAP":    GateSWAP,
	"TOFFOLI": GateToffoli,
	"CCX":     GateToffoli,
	"CCNOT":   GateToffoli,
}

func (t GateType) String() string {
	if name, ok := gateNames[t]; ok {
		return name
	}
	return "Unknown"
}

func (t GateType) Valid() bool {
	_, ok := gateNames[t]
	return ok
}

// ParseGateType resolves a case-insensitive gate name or alias.
func ParseGateType(name string) (GateType, error) {
	if t, ok := gateAliases[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedGate, "%q", name)
}

func (t GateType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedGate, "type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *GateType) UnmarshalText(text []byte) error {
	parsed, err := ParseGateType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Arity is the number of qubits the gate acts on.
func (t GateType) Arity() int {
	switch t {
	case GateCNOT, GateCZ, GateSWAP:
		return 2
	case GateToffoli:
		return 3
	default:
		return 1
	}
}

// Parametrized reports whether the gate takes a rotation angle.
func (t GateType) Parametrized() bool {
	return t == GateRX || t == GateRY || t == GateRZ
}

// Matrix2 is a 2×2 single-qubit unitary, row major.
type Matrix2 [2][2]Complex

// Matrix returns the unitary of a single-qubit gate. ok is false for
// multi-qubit gates.
func (t GateType) Matrix(theta float64) (m Matrix2, ok bool) {
	f := 1 / math.Sqrt2
	c := math.Cos(theta / 2)
	s := math.Sin(theta / 2)

	switch t {
	case GateH:
		return Matrix2{{complex(f, 0), complex(f, 0)}, {complex(f, 0), complex(-f, 0)}}, true
	case GateX:
		return Matrix2{{0, 1}, {1, 0}}, true
	case GateY:
		return Matrix2{{0, -1i}, {1i, 0}}, true
	case GateZ:
		return Matrix2{{1, 0}, {0, -1}}, true
	case GateS:
		return Matrix2{{1, 0}, {0, 1i}}, true
	case GateSdg:
		return Matrix2{{1, 0}, {0, -1i}}, true
	case GateT:
		return Matrix2{{1, 0}, {0, complex(f, f)}}, true
	case GateTdg:
		return Matrix2{{1, 0}, {0, complex(f, -f)}}, true
	case GateRX:
		return Matrix2{{complex(c, 0), complex(0, -s)}, {complex(0, -s), complex(c, 0)}}, true
	case GateRY:
		return Matrix2{{complex(c, 0), complex(-s, 0)}, {complex(s, 0), complex(c, 0)}}, true
	case GateRZ:
		return Matrix2{{complex(c, -s), 0}, {0, complex(c, s)}}, true
	}
	return Matrix2{}, false
}

// Apply validates g against the register and applies its unitary.
// On error the state vector is left untouched.
func (s *StateVector) Apply(g Gate) error {
	if err := g.validate(s.NumQubits); err != nil {
		return err
	}
	s.apply(g)
	return nil
}

// apply dispatches a gate that has already been validated.
func (s *StateVector) apply(g Gate) {
	q := g.Qubits
	switch g.Type {
	case GateCNOT:
		s.applyCNOT(q[0], q[1])
	case GateCZ:
		s.applyCZ(q[0], q[1])
	case GateSWAP:
		s.applySWAP(q[0], q[1])
	case GateToffoli:
		s.applyToffoli(q[0], q[1], q[2])
	default:
		m, _ := g.Type.Matrix(g.Angle())
		s.applyMatrix(q[0], m)
	}
}

// applyMatrix visits each (bit=0, bit=1) amplitude pair of qubit once.
func (s *StateVector) applyMatrix(qubit int, m Matrix2) {
	mask := qubitMask(qubit, s.NumQubits)
	next := make([]Complex, len(s.Amplitudes))
	for i := range s.Amplitudes {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		next[i] = Add(Mul(m[0][0], a0), Mul(m[0][1], a1))
		next[j] = Add(Mul(m[1][0], a0), Mul(m[1][1], a1))
	}
	s.Amplitudes = next
}

func (s *StateVector) applyCNOT(control, target int) {
	cMask := qubitMask(control, s.NumQubits)
	tMask := qubitMask(target, s.NumQubits)
	for i := range s.Amplitudes {
		if i&cMask != 0 && i&tMask == 0 {
			j := i | tMask
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	both := qubitMask(control, s.NumQubits) | qubitMask(target, s.NumQubits)
	for i := range s.Amplitudes {
		if i&both == both {
			s.Amplitudes[i] = -s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applySWAP(a, b int) {
	s.applyCNOT(a, b)
	s.applyCNOT(b, a)
	s.applyCNOT(a, b)
}

func (s *StateVector) applyToffoli(control1, control2, target int) {
	controls := qubitMask(control1, s.NumQubits) | qubitMask(control2, s.NumQubits)
	tMask := qubitMask(target, s.NumQubits)
	for i := range s.Amplitudes {
		if i&controls == controls && i&tMask == 0 {
			j := i | tMask
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}
