package qasm

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseAngle reads a rotation angle in radians. It accepts plain numbers
// and multiples of pi with an optional divisor: 0.5, pi, -pi/2, 3*pi/4,
// 2pi. Spaces and case are ignored.
func ParseAngle(s string) (float64, error) {
	expr := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if expr == "" {
		return 0, errors.Wrap(ErrSyntax, "empty angle")
	}

	num, den, hasDen := strings.Cut(expr, "/")
	val, ok := angleTerm(num)
	if !ok {
		return 0, errors.Wrapf(ErrSyntax, "angle %q", s)
	}
	if hasDen {
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 || math.IsInf(d, 0) || math.IsNaN(d) {
			return 0, errors.Wrapf(ErrSyntax, "angle %q: bad divisor", s)
		}
		val /= d
	}
	return val, nil
}

// angleTerm reads a number or a coefficient times pi.
func angleTerm(term string) (float64, bool) {
	coeff, isPi := strings.CutSuffix(term, "pi")
	if !isPi {
		v, err := strconv.ParseFloat(term, 64)
		return v, err == nil && !math.IsInf(v, 0) && !math.IsNaN(v)
	}
	coeff = strings.TrimSuffix(coeff, "*")
	switch coeff {
	case "":
		return math.Pi, true
	case "-":
		return -math.Pi, true
	}
	v, err := strconv.ParseFloat(coeff, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v * math.Pi, true
}

// piDivisors are tried in order, so the first match is the reduced fraction.
var piDivisors = []int{1, 2, 3, 4, 6, 8, 12}

// FormatAngle renders angles within one turn of zero that are k*pi/d for a
// small d in pi notation, and anything else as a decimal.
func FormatAngle(val float64) string {
	if val != 0 {
		turns := val / math.Pi
		for _, d := range piDivisors {
			k := math.Round(turns * float64(d))
			if k == 0 || math.Abs(k) > float64(2*d) || math.Abs(turns*float64(d)-k) > 1e-9 {
				continue
			}
			return piFraction(int(k), d)
		}
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

func piFraction(k, d int) string {
	var s string
	switch k {
	case 1:
		s = "pi"
	case -1:
		s = "-pi"
	default:
		s = strconv.Itoa(k) + "*pi"
	}
	if d > 1 {
		s += "/" + strconv.Itoa(d)
	}
	return s
}
