package types

// StepOutcome reports what Machine.Step did, without being an error --
// an empty queue or a negative message at the head are no-op outcomes,
// not failures.
type StepOutcome int

const (
	// Idle means the input queue had nothing pending past the cursor.
	Idle StepOutcome = iota
	// Skip means the head of the queue was a negative message; the
	// handler was not invoked and no state changed.
	Skip
	// Processed means a positive message was checkpointed, clocked in,
	// and handed to the user handler.
	Processed
)

func (o StepOutcome) String() string {
	switch o {
	case Idle:
		return "idle"
	case Skip:
		return "skip"
	case Processed:
		return "processed"
	default:
		return "unknown"
	}
}
