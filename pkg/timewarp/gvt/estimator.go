// Package gvt implements an optional global-virtual-time estimator and
// fossil-collection coordinator. Spec.md §1 and §9 are explicit that no
// GVT/fossil-collection algorithm is mandated -- the core only exposes
// the hooks (InputQueue.RemoveSmallest, OutputQueue.Pop,
// StateHistory.PurgeBefore, all reachable through Machine.FossilCollect)
// sufficient to add one. This package is that "one", kept entirely
// outside the core module boundary.
package gvt

import (
	"github.com/jabolina/timewarp/pkg/timewarp/core"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// InFlight reports the relevant timestamp of a message still traveling
// through the transport -- its send time, since that is the earliest
// point any sender could still be asked to roll back past.
type InFlight func() []types.VirtualTime

// Estimator computes the global minimum of every machine's local time
// and every in-flight message's send time, the classical GVT definition,
// and drives fossil collection down to that minimum.
type Estimator struct {
	machines map[types.MachineID]*core.Machine
	inFlight InFlight
}

// NewEstimator builds an Estimator over the given machines. inFlight may
// be nil, in which case GVT is simply the minimum local time across
// machines.
func NewEstimator(machines map[types.MachineID]*core.Machine, inFlight InFlight) *Estimator {
	return &Estimator{machines: machines, inFlight: inFlight}
}

// Compute returns the current global virtual time estimate. Returns
// false if there are no machines to estimate over.
func (e *Estimator) Compute() (types.VirtualTime, bool) {
	var (
		gvt types.VirtualTime
		set bool
	)
	consider := func(t types.VirtualTime) {
		if !set || t < gvt {
			gvt = t
			set = true
		}
	}

	for _, m := range e.machines {
		consider(m.CurrentTime())
	}
	if e.inFlight != nil {
		for _, t := range e.inFlight() {
			consider(t)
		}
	}
	return gvt, set
}

// Collect computes GVT and drives Machine.FossilCollect on every machine
// down to it, reclaiming storage for times strictly below the global
// minimum. Returns the GVT value used, or false if nothing could be
// computed (no machines registered).
func (e *Estimator) Collect() (types.VirtualTime, bool) {
	gvt, ok := e.Compute()
	if !ok {
		return 0, false
	}
	for _, m := range e.machines {
		m.FossilCollect(gvt)
	}
	return gvt, true
}
