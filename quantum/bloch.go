package quantum

import "math/cmplx"

// BlochVector is the (x, y, z) summary of one qubit's reduced state.
type BlochVector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BlochVectors traces out all but one qubit at a time and returns one
// vector per qubit, ordered by qubit index.
func (s *StateVector) BlochVectors() []BlochVector {
	if s.NumQubits == 1 {
		return []BlochVector{singleQubitBloch(s.Amplitudes[0], s.Amplitudes[1])}
	}
	vectors := make([]BlochVector, s.NumQubits)
	for q := 0; q < s.NumQubits; q++ {
		vectors[q] = s.reducedBloch(q)
	}
	return vectors
}

func singleQubitBloch(a, b Complex) BlochVector {
	ab := Mul(cmplx.Conj(a), b)
	return BlochVector{
		X: 2 * real(ab),
		Y: 2 * imag(ab),
		Z: norm2(a) - norm2(b),
	}
}

// reducedBloch builds the 2×2 reduced density matrix of qubit. Only index
// pairs that differ in the qubit's bit alone contribute off-diagonal terms,
// so one pass over the bit=0 half covers all four entries.
func (s *StateVector) reducedBloch(qubit int) BlochVector {
	mask := qubitMask(qubit, s.NumQubits)
	var rho00, rho11 float64
	var rho01, rho10 Complex
	for i, psi0 := range s.Amplitudes {
		if i&mask != 0 {
			continue
		}
		psi1 := s.Amplitudes[i|mask]
		rho00 += norm2(psi0)
		rho11 += norm2(psi1)
		rho01 = Add(rho01, Mul(psi0, cmplx.Conj(psi1)))
		rho10 = Add(rho10, Mul(psi1, cmplx.Conj(psi0)))
	}
	return BlochVector{
		X: real(rho01) + real(rho10),
		Y: imag(rho10) - imag(rho01),
		Z: rho00 - rho11,
	}
}
