package forecast

import "errors"

// Error kinds surfaced by the forecasting core. Callers match with
// errors.Is; messages carry the specific context via wrapping.
var (
	// ErrInsufficientHistory is returned by Fit when the price series is
	// shorter than lookback + max horizon.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrInvalidHorizon is returned by Predict when the horizon falls
	// outside [1, max horizon].
	ErrInvalidHorizon = errors.New("invalid horizon")

	// ErrNotFitted is returned when an operation requires a prior fit or
	// pre-train that has not happened.
	ErrNotFitted = errors.New("model not fitted")
)
