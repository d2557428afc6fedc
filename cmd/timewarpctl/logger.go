package main

import (
	"github.com/jabolina/timewarp/pkg/timewarp/definition"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// newScenarioLogger returns the structured logger scenarios hand to the
// transport package. The bare DefaultLogger is left for
// package-internal defaults; the CLI always opts into the logrus backend
// since it is the one built to survive the transport's per-machine
// goroutines.
func newScenarioLogger() types.Logger {
	return definition.NewLogrusLogger(nil)
}
