package main

import (
	"fmt"

	hcversion "github.com/hashicorp/go-version"
)

// protocolVersion is the wire-compatibility marker for messages crossing
// the transport seam (spec.md §6.3). The core itself never reads this --
// it is a harness-level concern, the same way the teacher's Unity gates
// incoming RPCs on a protocol version before ever touching the protocol
// state machine (pkg/mcast/protocol.go checkRPCHeader).
const protocolVersion = "1.0.0"

// checkCompatible mirrors the teacher's checkRPCHeader: a peer's
// advertised protocol version must be parseable and not newer than ours.
func checkCompatible(remote string) error {
	mine, err := hcversion.NewVersion(protocolVersion)
	if err != nil {
		return fmt.Errorf("local protocol version %q is malformed: %w", protocolVersion, err)
	}
	theirs, err := hcversion.NewVersion(remote)
	if err != nil {
		return fmt.Errorf("remote protocol version %q is malformed: %w", remote, err)
	}
	if theirs.GreaterThan(mine) {
		return fmt.Errorf("remote protocol version %s is newer than local %s", theirs, mine)
	}
	return nil
}
