package quantum

type Complex = complex128

// Add returns a+b.
func Add(a, b Complex) Complex {
	return complex(real(a)+real(b), imag(a)+imag(b))
}

// Mul returns the standard complex product a*b.
func Mul(a, b Complex) Complex {
	return complex(
		real(a)*real(b)-imag(a)*imag(b),
		real(a)*imag(b)+imag(a)*real(b),
	)
}

// Amplitude is the exported form of a complex amplitude.
type Amplitude struct {
	Real      float64 `json:"real" yaml:"real"`
	Imaginary float64 `json:"imaginary" yaml:"imaginary"`
}

func ToAmplitude(c Complex) Amplitude {
	return Amplitude{Real: real(c), Imaginary: imag(c)}
}

func (a Amplitude) Complex() Complex {
	return complex(a.Real, a.Imaginary)
}

// norm2 returns |c|².
func norm2(c Complex) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}
