package calibrate

import (
	"errors"
	"fmt"
)

// Error codes surfaced to the API layer. INVALID_RAW_GRAPH is an input defect
// and never retryable; CALIBRATION_FAILED is a programming defect wrapped with
// its cause for diagnostics.
const (
	CodeInvalidRawGraph   = "INVALID_RAW_GRAPH"
	CodeCalibrationFailed = "CALIBRATION_FAILED"
)

var (
	ErrInvalidRawGraph   = errors.New("invalid raw graph")
	ErrCalibrationFailed = errors.New("calibration failed")
)

// PipelineError carries the code plus diagnostics about the raw input.
type PipelineError struct {
	Code  string
	Cause error

	// original input shape, for diagnostics only
	Nodes int
	Edges int
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v (nodes=%d edges=%d)", e.Code, e.Cause, e.Nodes, e.Edges)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

func (e *PipelineError) Is(target error) bool {
	switch e.Code {
	case CodeInvalidRawGraph:
		return target == ErrInvalidRawGraph
	case CodeCalibrationFailed:
		return target == ErrCalibrationFailed
	}
	return false
}

// ErrCode maps any error to its API code, empty for unrelated errors.
func ErrCode(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
