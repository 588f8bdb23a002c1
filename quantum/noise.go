package quantum

import (
	"math"

	"github.com/pkg/errors"
)

// ApplyNoise replays every shot in results and flips each bit of its
// bitstring independently with probability noiseLevel. This is a classical
// readout-error model, not a physical decoherence channel.
func (s *Sampler) ApplyNoise(results []MeasurementResult, noiseLevel float64) ([]MeasurementResult, error) {
	if err := CheckNoiseLevel(noiseLevel); err != nil {
		return nil, err
	}

	shots := 0
	counts := make(map[string]int, len(results))
	for _, r := range results {
		shots += r.Count
		if noiseLevel == 0 {
			counts[r.State] += r.Count
			continue
		}
		bits := []byte(r.State)
		for n := 0; n < r.Count; n++ {
			for b := range bits {
				bits[b] = r.State[b]
				if s.rng.Float64() < noiseLevel {
					bits[b] ^= '0' ^ '1'
				}
			}
			counts[string(bits)]++
		}
	}
	if shots == 0 {
		return nil, errors.Wrap(ErrInvalidShotCount, "no shots to degrade")
	}
	return tabulate(counts, shots), nil
}

// CheckNoiseLevel rejects levels outside [0,1], NaN included.
func CheckNoiseLevel(level float64) error {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return errors.Wrapf(ErrInvalidNoiseLevel, "%v not in [0,1]", level)
	}
	return nil
}
