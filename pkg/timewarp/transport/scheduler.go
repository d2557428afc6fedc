package transport

import (
	"github.com/jabolina/timewarp/pkg/timewarp/core"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// Scheduler is a trivial round-robin driver calling Step on every
// registered machine with pending input. Deciding which machine to run
// next is explicitly out of core scope per spec.md §1; this exists only
// so a harness has something to call.
type Scheduler struct {
	order    []types.MachineID
	machines map[types.MachineID]*core.Machine
}

// NewScheduler builds a scheduler over the given machines, in the order
// they are passed.
func NewScheduler(machines map[types.MachineID]*core.Machine, order []types.MachineID) *Scheduler {
	return &Scheduler{order: order, machines: machines}
}

// RunUntilIdle repeatedly steps every machine in round-robin order until
// a full pass produces no Processed outcome, meaning every machine is
// either exhausted past its cursor (Idle) or held by a negative message
// at its head (Skip), which no further Step can clear. Returns the total
// number of Step calls that processed a message.
func (s *Scheduler) RunUntilIdle() int {
	total := 0
	for {
		progressed := false
		for _, id := range s.order {
			m := s.machines[id]
			outcome := m.Step()
			if outcome == types.Processed {
				progressed = true
				total++
			}
		}
		if !progressed {
			return total
		}
	}
}
