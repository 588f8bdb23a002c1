package quantum

import "github.com/pkg/errors"

// Caller-input errors. They are returned wrapped with context; match with errors.Is.
var (
	ErrInvalidQubitCount = errors.New("invalid qubit count")
	ErrInvalidQubitIndex = errors.New("invalid qubit index")
	ErrInvalidGateArity  = errors.New("invalid gate arity")
	ErrUnsupportedGate   = errors.New("unsupported gate")
	ErrInvalidShotCount  = errors.New("invalid shot count")
	ErrInvalidNoiseLevel = errors.New("invalid noise level")
)
