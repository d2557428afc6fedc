package core

import "github.com/jabolina/timewarp/pkg/timewarp/types"

// StateMachine is the polymorphism seam spec.md §9 calls for: an explicit
// interface bundling the user event handler with the two snapshot
// operations (clone, assign), generalizing the teacher's own
// types.StateMachine (Commit/Restore) to the rollback domain.
type StateMachine interface {
	// Handle applies msg to the current state. It may call send zero or
	// more times to emit outputs. It must be deterministic as a function
	// of (state, msg) -- rollback replays it and expects the same
	// outputs every time. It must not retain msg beyond the call.
	Handle(msg types.Message, send func(types.Message)) error

	// Snapshot returns an independent deep copy of the current state,
	// fit to be handed to Restore arbitrarily later. Called once by
	// NewMachine for the initial checkpoint, then once per Step that
	// processes a message, immediately before the handler runs.
	Snapshot() interface{}

	// Restore replaces the current state with a previously captured
	// snapshot. Called once per straggler, before any antimessages are
	// issued.
	Restore(snapshot interface{})
}
