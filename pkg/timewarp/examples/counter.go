// Package examples provides a minimal StateMachine used by the test
// suite and the CLI harness to exercise the rollback engine without
// dragging in a real payload domain -- spec.md §1 explicitly leaves
// "concrete payload semantics" out of the core's scope.
package examples

import "github.com/jabolina/timewarp/pkg/timewarp/types"

// CounterState is the worked example from spec.md §8: every processed
// positive message adds a fixed amount to a running counter.
type CounterState struct {
	Counter int
}

// CounterMachine implements core.StateMachine by adding Increment to the
// counter for every positive message it handles. It never calls send --
// timewarpctl's scenarios A, B, D, E, F and H use it where only the
// receive side matters; cross-machine sends are covered separately by the
// relay machine below.
type CounterMachine struct {
	Increment int
	state     CounterState
}

// NewCounterMachine creates a CounterMachine that adds increment per
// processed message.
func NewCounterMachine(increment int) *CounterMachine {
	return &CounterMachine{Increment: increment}
}

func (c *CounterMachine) Handle(_ types.Message, _ func(types.Message)) error {
	c.state.Counter += c.Increment
	return nil
}

func (c *CounterMachine) Snapshot() interface{} {
	return c.state
}

func (c *CounterMachine) Restore(snapshot interface{}) {
	c.state = snapshot.(CounterState)
}

// Counter returns the current counter value.
func (c *CounterMachine) Counter() int {
	return c.state.Counter
}

// RelayMachine adds Increment to its counter like CounterMachine, and
// additionally forwards a derived message to Forward for every message it
// processes -- used by timewarpctl's sender-side scenarios (C and G), where
// a machine's own rollback must chase down messages it already sent to
// another machine.
type RelayMachine struct {
	Increment int
	Forward   func(in types.Message) (types.Message, bool)
	state     CounterState
}

// NewRelayMachine creates a RelayMachine. forward is called with every
// processed message and, if it returns true, the returned message is
// sent via the send callback Handle receives.
func NewRelayMachine(increment int, forward func(in types.Message) (types.Message, bool)) *RelayMachine {
	return &RelayMachine{Increment: increment, Forward: forward}
}

func (r *RelayMachine) Handle(msg types.Message, send func(types.Message)) error {
	r.state.Counter += r.Increment
	if r.Forward != nil {
		if out, ok := r.Forward(msg); ok {
			send(out)
		}
	}
	return nil
}

func (r *RelayMachine) Snapshot() interface{} {
	return r.state
}

func (r *RelayMachine) Restore(snapshot interface{}) {
	r.state = snapshot.(CounterState)
}

// Counter returns the current counter value.
func (r *RelayMachine) Counter() int {
	return r.state.Counter
}
