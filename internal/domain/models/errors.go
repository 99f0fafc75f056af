package models

import "errors"

// Error kinds surfaced by the analysis pipeline. Wrap them with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrInvalidInput    = errors.New("invalid input")
	ErrComputation     = errors.New("computation error")
)

// ErrorKind returns a short label for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrComputation):
		return "computation"
	default:
		return "internal"
	}
}
