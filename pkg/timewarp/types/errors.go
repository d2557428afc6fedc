package types

import "fmt"

// InvariantViolation signals a fatal programming error or a protocol
// violation by the transport -- a state the core must never reach on its
// own. The core never recovers from it internally; it panics with this
// value so the surrounding harness can decide whether to crash the
// process or quarantine the offending machine.
type InvariantViolation struct {
	Machine MachineID
	Reason  string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation on machine %d: %s", e.Machine, e.Reason)
}

// Violation panics with an *InvariantViolation built from the given
// machine id and formatted reason.
func Violation(machine MachineID, format string, args ...interface{}) {
	panic(&InvariantViolation{Machine: machine, Reason: fmt.Sprintf(format, args...)})
}
