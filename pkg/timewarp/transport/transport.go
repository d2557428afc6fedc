// Package transport provides the external collaborator spec.md §6.3
// leaves to the harness: something that takes the antimessages a
// Machine.Receive returns and the messages a Machine.Send emits, and
// delivers them to their addressed machine's Receive. The core package
// never imports this one.
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jabolina/timewarp/pkg/timewarp/core"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// Transport is the seam a Machine's output is routed through. The
// transport may reorder arbitrarily; duplicates are not permitted --
// annihilation would silently cancel them, corrupting the receiver's
// queues.
type Transport interface {
	// Unicast delivers message to the named destination machine.
	Unicast(ctx context.Context, destination types.MachineID, message types.Message) error
	// Register attaches a machine so Unicast can address it.
	Register(id types.MachineID, machine *core.Machine)
	// Close stops delivering and releases resources.
	Close()
}

// LocalTransport is an in-memory, single-process Transport built in the
// shape of the teacher's core.ReliableTransport: one buffered channel and
// one poll goroutine per registered machine, a context for shutdown, and
// a bounded delivery timeout. It deliberately does not carry forward the
// teacher's `relt` reliable-broadcast dependency -- see DESIGN.md -- and
// instead fans antimessages produced by a straggler rollback back through
// itself, closing the loop spec.md leaves external.
type LocalTransport struct {
	mu       sync.Mutex
	machines map[types.MachineID]*core.Machine
	inbox    map[types.MachineID]chan types.Message
	log      types.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLocalTransport creates a transport ready to have machines
// registered onto it.
func NewLocalTransport(log types.Logger) *LocalTransport {
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalTransport{
		machines: make(map[types.MachineID]*core.Machine),
		inbox:    make(map[types.MachineID]chan types.Message),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register attaches a machine and starts its delivery goroutine. Per
// spec.md §5, each machine runs on at most one thread of control; this is
// that thread for everything arriving from the transport.
func (t *LocalTransport) Register(id types.MachineID, machine *core.Machine) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.machines[id] = machine
	ch := make(chan types.Message, 256)
	t.inbox[id] = ch

	t.wg.Add(1)
	go t.deliverLoop(id, machine, ch)
}

func (t *LocalTransport) deliverLoop(id types.MachineID, machine *core.Machine, ch chan types.Message) {
	defer t.wg.Done()
	for {
		select {
		case <-t.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			antimessages := machine.Receive(msg)
			for _, anti := range antimessages {
				if err := t.Unicast(t.ctx, anti.Receiver, anti); err != nil {
					t.log.Errorf("failed routing antimessage from machine %d to %d: %v", id, anti.Receiver, err)
				}
			}
		}
	}
}

// Unicast delivers message to the named destination, bounded by a short
// timeout so a wedged receiver cannot block the sender forever.
func (t *LocalTransport) Unicast(ctx context.Context, destination types.MachineID, message types.Message) error {
	t.mu.Lock()
	ch, ok := t.inbox[destination]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("transport: unknown destination machine %d", destination)
	}

	select {
	case ch <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return fmt.Errorf("transport: timed out delivering to machine %d", destination)
	}
}

// Close stops all delivery goroutines and waits for them to exit.
func (t *LocalTransport) Close() {
	t.cancel()
	t.mu.Lock()
	for _, ch := range t.inbox {
		close(ch)
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// Send is a convenience wrapper for application code driving a Machine
// directly: it calls Machine.Send and routes the result through the
// transport to its receiver.
func (t *LocalTransport) Send(ctx context.Context, machine *core.Machine, msg types.Message) error {
	sent := machine.Send(msg)
	return t.Unicast(ctx, sent.Receiver, sent)
}
