package core

import "github.com/jabolina/timewarp/pkg/timewarp/types"

// Collector is the ambient metrics seam. A nil Collector is valid --
// Machine guards every call site -- so embedding the kernel never forces
// a Prometheus dependency onto a caller that does not want one.
type Collector interface {
	ObserveStep(machine types.MachineID, outcome types.StepOutcome)
	ObserveRollback(machine types.MachineID, target, previous types.VirtualTime, antimessages int)
	ObserveQueueSizes(machine types.MachineID, inputLen, outputLen, historyLen int)
}
