package quantum

import "github.com/pkg/errors"

// MaxQubits bounds the state vector size. Memory is O(2^N) and the
// executor is O(G·2^N); the bound keeps a single run well under a second.
const MaxQubits = 12

// StateVector holds the 2^N amplitudes of an N-qubit register.
// Index bit N-1-q holds qubit q, so qubit 0 is the most significant bit.
type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

// NewStateVector returns |0…0⟩ for numQubits qubits.
func NewStateVector(numQubits int) (*StateVector, error) {
	if err := checkQubitCount(numQubits); err != nil {
		return nil, err
	}
	amps := make([]Complex, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}, nil
}

func checkQubitCount(numQubits int) error {
	if numQubits < 1 || numQubits > MaxQubits {
		return errors.Wrapf(ErrInvalidQubitCount, "%d qubits (want 1..%d)", numQubits, MaxQubits)
	}
	return nil
}

// qubitMask returns the index bit that belongs to qubit. Every gate
// locates its amplitudes through this helper.
func qubitMask(qubit, numQubits int) int {
	return 1 << (numQubits - 1 - qubit)
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]Complex, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Probabilities returns |amplitude|² per basis index.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		probs[i] = norm2(amp)
	}
	return probs
}

type QubitProbability struct {
	Prob0 float64 `json:"p0" yaml:"p0"`
	Prob1 float64 `json:"p1" yaml:"p1"`
}

// QubitProbabilities returns the marginal outcome probabilities of each qubit.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, amp := range s.Amplitudes {
		p := norm2(amp)
		for q := 0; q < s.NumQubits; q++ {
			if i&qubitMask(q, s.NumQubits) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}
