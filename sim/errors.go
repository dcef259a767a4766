package sim

import (
	"errors"
	"fmt"
)

// ErrConfig is wrapped by every error that stops a replication from being
// constructed: bad topology, non-positive rates, missing seed streams,
// malformed run files.
var ErrConfig = errors.New("configuration error")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// InvariantViolation is the panic value raised when the scheduler or an
// entity state machine reaches a state that normal control flow rules out,
// such as draining an empty buffer after readiness was asserted.
// Simulator.Run recovers it and returns it as an error; it is never
// swallowed.
type InvariantViolation struct {
	Clock  float64
	Reason string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated at t=%.6f: %s", v.Clock, v.Reason)
}

func violate(clock float64, format string, args ...any) {
	panic(&InvariantViolation{Clock: clock, Reason: fmt.Sprintf(format, args...)})
}
