// Package core implements the per-machine rollback engine: the coupled
// input queue, output queue and state history, and the protocol
// governing insert, process, straggler detection, rollback, and
// message/antimessage annihilation. This is the entire scope of the
// kernel proper -- transport, scheduling, GVT and persistence are
// external collaborators the Machine exposes seams for but never calls.
package core

import (
	"github.com/jabolina/timewarp/pkg/timewarp/history"
	"github.com/jabolina/timewarp/pkg/timewarp/queue"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
	"github.com/jabolina/timewarp/pkg/timewarp/definition"
)

// Machine owns its input queue, output queue and state history, a local
// virtual clock, and the user's StateMachine. All of its operations must
// be invoked from at most one thread of control at a time -- it holds no
// mutex and starts no goroutines, per spec.md §5.
type Machine struct {
	id    types.MachineID
	clock types.VirtualTime

	sm      StateMachine
	input   *queue.InputQueue
	output  *queue.OutputQueue
	history *history.StateHistory

	log       types.Logger
	collector Collector
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithLogger overrides the default logger.
func WithLogger(log types.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// WithCollector attaches a metrics Collector. Passing nil is a no-op --
// Machine already defaults to nil.
func WithCollector(c Collector) Option {
	return func(m *Machine) { m.collector = c }
}

// NewMachine creates a Machine at virtual time zero, seeded with the
// state machine's initial snapshot as the mandatory (0, initial) history
// entry (spec.md §3, invariant I4).
func NewMachine(id types.MachineID, sm StateMachine, opts ...Option) *Machine {
	m := &Machine{
		id:      id,
		clock:   0,
		sm:      sm,
		input:   queue.NewInputQueue(0),
		output:  queue.NewOutputQueue(),
		history: history.New(sm.Snapshot()),
		log:     definition.NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns the machine's identifier.
func (m *Machine) ID() types.MachineID {
	return m.id
}

// CurrentTime is a pure accessor for the local virtual clock.
func (m *Machine) CurrentTime() types.VirtualTime {
	return m.clock
}

// Receive delivers an inbound message. If it is not a straggler it is
// simply enqueued (annihilating any antimessage already waiting) and nil
// is returned. If it is a straggler, Receive performs the full rollback
// protocol of spec.md §4.5 and returns the antimessages it issued so the
// harness can route them to their destinations. A nil return with no
// panic always means "no antimessages were necessary", not "nothing
// happened".
func (m *Machine) Receive(msg types.Message) []types.Message {
	if msg.ReceiveTime >= m.clock {
		m.input.Insert(msg)
		return nil
	}
	return m.rollback(msg)
}

// rollback implements spec.md §4.5 steps 1-6, in the exact order the
// spec mandates: state must be restored before antimessages are issued
// so that sending them observes a consistent machine, and the clock is
// reset last.
func (m *Machine) rollback(straggler types.Message) []types.Message {
	target := straggler.ReceiveTime
	previous := m.clock

	// 1. Restore state.
	snapshot, ok := m.history.MostRecentBefore(target)
	if !ok {
		types.Violation(m.id, "no checkpoint strictly before straggler receive_time %d", target)
	}
	m.sm.Restore(snapshot)

	// 2. Purge invalidated checkpoints.
	m.history.PurgeAtOrAfter(target)

	// 3. Issue antimessages for everything sent during [target, previous].
	toNegate := m.output.Range(target, previous)
	antimessages := make([]types.Message, 0, len(toNegate))
	for _, sent := range toNegate {
		antimessages = append(antimessages, m.Send(sent.Negate()))
	}

	// 4. Reset clock and cursor. target-1 is deliberate: it makes the
	// straggler itself eligible for the next PeekNext.
	m.clock = target
	m.input.SetCursor(target - 1)

	// 5. Insert the straggler (may itself annihilate against something
	// already enqueued).
	m.input.Insert(straggler)

	if m.collector != nil {
		m.collector.ObserveRollback(m.id, target, previous, len(antimessages))
		m.observeQueues()
	}
	m.log.Debugf("machine %d rolled back to %d (was %d), emitted %d antimessages", m.id, target, previous, len(antimessages))

	// 6. Return the antimessages for the harness to dispatch.
	return antimessages
}

// Step advances the machine by processing at most one message.
func (m *Machine) Step() types.StepOutcome {
	next, ok := m.input.PeekNext()
	if !ok {
		if m.collector != nil {
			m.collector.ObserveStep(m.id, types.Idle)
		}
		return types.Idle
	}

	if next.ReceiveTime < m.clock {
		types.Violation(m.id, "peeked message with receive_time %d below local clock %d", next.ReceiveTime, m.clock)
	}

	if next.Sign == types.Negative {
		// A negative message at the head means its positive twin is
		// either still in flight or already cancelled. Processing it
		// against user state would guarantee an immediate rollback the
		// instant the positive arrives, so it is a deliberate no-op.
		if m.collector != nil {
			m.collector.ObserveStep(m.id, types.Skip)
		}
		return types.Skip
	}

	// Checkpoint the state about to be invalidated if a straggler
	// arrives for a time at or before this one, then advance.
	m.history.Checkpoint(m.clock, m.sm.Snapshot())
	m.clock = next.ReceiveTime
	m.input.SetCursor(next.ReceiveTime)

	if err := m.sm.Handle(next, func(out types.Message) { m.Send(out) }); err != nil {
		m.log.Errorf("machine %d handler failed on %s: %v", m.id, next, err)
	}

	if m.collector != nil {
		m.collector.ObserveStep(m.id, types.Processed)
		m.observeQueues()
	}
	return types.Processed
}

// Send records msg in the output queue (annihilating against a prior
// antimessage if one is already there) and returns it so the caller can
// route it to its destination. Used identically for user-generated
// positive messages and rollback-generated negative ones.
func (m *Machine) Send(msg types.Message) types.Message {
	m.output.Push(msg)
	return msg
}

// InputLen, OutputLen and HistoryLen expose queue sizes for diagnostics
// and the GVT/fossil-collection hooks; they are not part of the
// rollback protocol itself.
func (m *Machine) InputLen() int   { return m.input.Len() }
func (m *Machine) OutputLen() int  { return m.output.Len() }
func (m *Machine) HistoryLen() int { return m.history.Len() }

// FossilCollect drives the three external hooks spec.md §6.4 names,
// reclaiming storage for times strictly below globalMinimum. The core
// never calls this itself; an external GVT coordinator does.
func (m *Machine) FossilCollect(globalMinimum types.VirtualTime) {
	for {
		msg, ok := m.input.RemoveSmallest()
		if !ok || msg.ReceiveTime >= globalMinimum {
			if ok {
				m.input.Insert(msg)
			}
			break
		}
	}
	for {
		msg, ok := m.output.Pop()
		if !ok || msg.SendTime >= globalMinimum {
			if ok {
				m.output.Push(msg)
			}
			break
		}
	}
	m.history.PurgeBefore(globalMinimum)
}

func (m *Machine) observeQueues() {
	m.collector.ObserveQueueSizes(m.id, m.input.Len(), m.output.Len(), m.history.Len())
}
