package quantum

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// MeasurementResult aggregates the shots that produced one bitstring.
type MeasurementResult struct {
	State       string  `json:"state"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
}

// Bitstring renders index as numQubits binary digits, qubit 0 first.
func Bitstring(index, numQubits int) string {
	return fmt.Sprintf("%0*b", numQubits, index)
}

// Sampler draws measurement outcomes from a probability distribution.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

func NewSampler(src rand.Source) *Sampler {
	return &Sampler{rng: rand.New(src)}
}

// NewSeededSampler returns a sampler whose draws are reproducible.
func NewSeededSampler(seed uint64) *Sampler {
	return NewSampler(rand.NewSource(seed))
}

// Sample draws shots outcomes by inverse-CDF lookup over probs, which
// must hold 2^numQubits entries.
func (s *Sampler) Sample(probs []float64, numQubits, shots int) ([]MeasurementResult, error) {
	if err := checkQubitCount(numQubits); err != nil {
		return nil, err
	}
	if len(probs) != 1<<numQubits {
		return nil, errors.Wrapf(ErrInvalidQubitCount, "%d probabilities for %d qubits", len(probs), numQubits)
	}
	if shots <= 0 {
		return nil, errors.Wrapf(ErrInvalidShotCount, "%d shots", shots)
	}

	cdf := make([]float64, len(probs))
	floats.CumSum(cdf, probs)
	total := cdf[len(cdf)-1]

	counts := make(map[string]int)
	for n := 0; n < shots; n++ {
		r := s.rng.Float64() * total
		idx := sort.Search(len(cdf), func(i int) bool { return cdf[i] > r })
		if idx == len(cdf) {
			idx = lastNonZero(probs)
		}
		counts[Bitstring(idx, numQubits)]++
	}
	return tabulate(counts, shots), nil
}

// Measure simulates c and samples its final distribution.
func (s *Sampler) Measure(c Circuit, shots int) ([]MeasurementResult, error) {
	if shots <= 0 {
		return nil, errors.Wrapf(ErrInvalidShotCount, "%d shots", shots)
	}
	res, err := Simulate(c)
	if err != nil {
		return nil, err
	}
	return s.Sample(res.Probabilities, res.NumQubits(), shots)
}

// MeasureWithNoise samples c ideally and then passes the outcomes
// through the bit-flip channel.
func (s *Sampler) MeasureWithNoise(c Circuit, shots int, noiseLevel float64) ([]MeasurementResult, error) {
	if err := CheckNoiseLevel(noiseLevel); err != nil {
		return nil, err
	}
	ideal, err := s.Measure(c, shots)
	if err != nil {
		return nil, err
	}
	return s.ApplyNoise(ideal, noiseLevel)
}

func lastNonZero(probs []float64) int {
	for i := len(probs) - 1; i >= 0; i-- {
		if probs[i] > 0 {
			return i
		}
	}
	return 0
}

// tabulate orders results by descending count, then ascending bitstring.
func tabulate(counts map[string]int, shots int) []MeasurementResult {
	results := make([]MeasurementResult, 0, len(counts))
	for state, count := range counts {
		results = append(results, MeasurementResult{
			State:       state,
			Count:       count,
			Probability: float64(count) / float64(shots),
		})
	}
	slices.SortFunc(results, func(a, b MeasurementResult) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.State, b.State)
	})
	return results
}
