package quantum

import (
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApplyNoise(t *testing.T) {
	Convey("Given ideal measurement results", t, func() {
		s := NewSeededSampler(7)
		ideal, err := s.Measure(bell(), 2000)
		So(err, ShouldBeNil)

		Convey("Zero noise leaves them unchanged", func() {
			noisy, err := s.ApplyNoise(ideal, 0)
			So(err, ShouldBeNil)
			So(noisy, ShouldResemble, ideal)
		})

		Convey("Full noise flips every bit", func() {
			noisy, err := s.ApplyNoise(ideal, 1)
			So(err, ShouldBeNil)
			So(noisy, ShouldHaveLength, 2)
			So(totalCount(noisy), ShouldEqual, 2000)

			byState := map[string]int{}
			for _, r := range ideal {
				byState[r.State] = r.Count
			}
			for _, r := range noisy {
				So(r.Count, ShouldEqual, byState[flipAll(r.State)])
			}
		})

		Convey("Partial noise preserves the shot count", func() {
			noisy, err := s.ApplyNoise(ideal, 0.2)
			So(err, ShouldBeNil)
			So(totalCount(noisy), ShouldEqual, 2000)
			So(len(noisy), ShouldBeGreaterThan, 2)
		})

		Convey("Out of range levels are rejected", func() {
			for _, level := range []float64{-0.1, 1.5, math.NaN()} {
				_, err := s.ApplyNoise(ideal, level)
				So(errors.Is(err, ErrInvalidNoiseLevel), ShouldBeTrue)
			}
		})

		Convey("An empty result set has no shots", func() {
			_, err := s.ApplyNoise(nil, 0.1)
			So(errors.Is(err, ErrInvalidShotCount), ShouldBeTrue)
		})
	})

	Convey("Per-bit flip rate follows the noise level", t, func() {
		s := NewSeededSampler(99)
		c := Circuit{NumQubits: 1}
		noisy, err := s.MeasureWithNoise(c, 10000, 0.1)
		So(err, ShouldBeNil)
		So(totalCount(noisy), ShouldEqual, 10000)

		flipped := 0.0
		for _, r := range noisy {
			if r.State == "1" {
				flipped = r.Probability
			}
		}
		So(flipped, ShouldAlmostEqual, 0.1, 0.03)
	})

	Convey("Noise level zero matches an ideal measurement", t, func() {
		ideal, err := NewSeededSampler(3).Measure(bell(), 300)
		So(err, ShouldBeNil)
		noisy, err := NewSeededSampler(3).MeasureWithNoise(bell(), 300, 0)
		So(err, ShouldBeNil)
		So(noisy, ShouldResemble, ideal)
		Printf("%s", spew.Sdump(noisy))
	})
}

func flipAll(state string) string {
	b := []byte(state)
	for i := range b {
		b[i] ^= '0' ^ '1'
	}
	return string(b)
}
