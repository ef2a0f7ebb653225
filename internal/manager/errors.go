package manager

import "errors"

// Backpressure reasons carried by tooBusyError.
const (
	ReasonQueueFull   = "queue_full"
	ReasonWaitTimeout = "wait_timeout"
	ReasonDraining    = "draining"
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ reason string }

func (e tooBusyError) Error() string { return "too busy: " + e.reason }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// TooBusyReason returns the backpressure reason, or "" if err is not a
// backpressure error.
func TooBusyReason(err error) string {
	var e tooBusyError
	if errors.As(err, &e) {
		return e.reason
	}
	return ""
}

// modelUnavailableError is returned by Generate while no model is loaded.
type modelUnavailableError struct{ state LoadState }

func (e modelUnavailableError) Error() string {
	return "model is not available (state: " + string(e.state) + ")"
}

// ErrModelUnavailable constructs a modelUnavailableError for the given state.
func ErrModelUnavailable(state LoadState) error { return modelUnavailableError{state: state} }

// IsModelUnavailable reports whether err indicates the model is not loaded.
func IsModelUnavailable(err error) bool {
	var e modelUnavailableError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing external dependency (e.g., llama.cpp)
// so the HTTP layer can return 503 Service Unavailable instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// invalidRequestError rejects input the loaded model cannot accept.
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err should map to 400.
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}
