// Package history implements the state-history / checkpoint store a
// Machine rolls back against: an ordered collection of (virtual time,
// snapshot) entries, strictly increasing in virtual time, always
// containing the initial (0, initial_state) entry.
package history

import (
	"sort"

	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// entry pairs a checkpoint time with the snapshot taken at that time.
type entry struct {
	at       types.VirtualTime
	snapshot interface{}
}

// StateHistory is not safe for concurrent use; a Machine owns its
// StateHistory exclusively, see spec.md §5.
type StateHistory struct {
	entries []entry
}

// New creates a state history seeded with the mandatory (0, initial)
// checkpoint -- this is what guarantees MostRecentBefore is defined for
// any straggler receive_time above zero. Nothing lies strictly before
// virtual time zero, so MostRecentBefore(0) reports false.
func New(initial interface{}) *StateHistory {
	return &StateHistory{entries: []entry{{at: 0, snapshot: initial}}}
}

// Checkpoint inserts a snapshot at virtual time t. The Machine checkpoints
// at its current clock immediately before advancing it, so t never
// decreases but can repeat (the first Step repeats the seeded time-0
// entry); a checkpoint at the time of the latest entry replaces that
// entry's snapshot, which keeps entries strictly increasing. A smaller t
// is not guarded against defensively -- it reflects a core bug, not a
// runtime condition to guard against.
func (h *StateHistory) Checkpoint(t types.VirtualTime, snapshot interface{}) {
	if n := len(h.entries); n > 0 && h.entries[n-1].at == t {
		h.entries[n-1].snapshot = snapshot
		return
	}
	h.entries = append(h.entries, entry{at: t, snapshot: snapshot})
}

// MostRecentBefore returns the snapshot with the greatest virtual time
// strictly less than t. Always defined because of the mandatory time-0
// entry, unless fossil collection has purged it out from under a straggler
// older than the global minimum -- which would itself be an invariant
// violation by whatever drives fossil collection.
func (h *StateHistory) MostRecentBefore(t types.VirtualTime) (interface{}, bool) {
	// entries is sorted ascending by `at`; find the rightmost entry with
	// at < t.
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].at >= t
	})
	if idx == 0 {
		return nil, false
	}
	return h.entries[idx-1].snapshot, true
}

// PurgeAtOrAfter removes all entries with virtual time >= t, used during
// rollback to discard checkpoints invalidated by a straggler.
func (h *StateHistory) PurgeAtOrAfter(t types.VirtualTime) {
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].at >= t
	})
	h.entries = h.entries[:idx]
}

// PurgeBefore removes all entries with virtual time strictly less than t,
// except it always keeps at least one entry (the greatest one below t) so
// MostRecentBefore remains defined for any straggler still in flight.
// This is the fossil-collection hook of spec.md §6.4; the core never
// calls it.
func (h *StateHistory) PurgeBefore(t types.VirtualTime) {
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].at >= t
	})
	if idx <= 1 {
		return
	}
	// Keep the entry immediately before t so MostRecentBefore(t) and any
	// straggler receive_time >= t still resolve.
	h.entries = h.entries[idx-1:]
}

// Len reports how many checkpoints are currently retained.
func (h *StateHistory) Len() int {
	return len(h.entries)
}
