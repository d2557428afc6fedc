package queue

import (
	"github.com/google/btree"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// degree is the btree.New branching factor. The queues in this kernel are
// small (a machine's rollback window, not its whole history), so a low
// degree favoring simplicity over cache-line packing is fine.
const degree = 16

// InputQueue is the ordered multiset of pending/processed messages keyed
// by ReceiveTime, carrying a cursor that partitions "processed" (kept
// only for rollback) from "pending" (eligible for PeekNext).
//
// Not safe for concurrent use: a Machine owns its InputQueue exclusively
// and every operation against it must already be serialized by the
// caller, per spec.md §5.
type InputQueue struct {
	tree   *btree.BTree
	byKey  map[equivKey]*item
	cursor types.VirtualTime
	seq    uint64
}

// NewInputQueue creates an empty input queue with the given initial
// cursor.
func NewInputQueue(cursor types.VirtualTime) *InputQueue {
	return &InputQueue{
		tree:   btree.New(degree),
		byKey:  make(map[equivKey]*item),
		cursor: cursor,
	}
}

// Insert performs an annihilating insert: if a message that is
// annihilation-equivalent to m is already present, both vanish and the
// queue shrinks by one. Otherwise m is added. Reports whether m ended up
// stored (false means annihilation happened instead).
func (q *InputQueue) Insert(m types.Message) bool {
	key := keyOf(m)
	if existing, ok := q.byKey[key]; ok {
		delete(q.byKey, key)
		q.tree.Delete(inputItem{existing})
		return false
	}

	q.seq++
	it := &item{message: m, primary: m.ReceiveTime, seq: q.seq}
	q.byKey[key] = it
	q.tree.ReplaceOrInsert(inputItem{it})
	return true
}

// PeekNext returns the message with the smallest ReceiveTime strictly
// greater than the cursor, without removing it.
func (q *InputQueue) PeekNext() (types.Message, bool) {
	var found *item
	sentinel := inputItem{&item{primary: q.cursor + 1, seq: 0}}
	q.tree.AscendGreaterOrEqual(sentinel, func(i btree.Item) bool {
		found = i.(inputItem).item
		return false
	})
	if found == nil {
		return types.Message{}, false
	}
	return found.message, true
}

// SetCursor moves the watermark separating processed history from
// pending future messages.
func (q *InputQueue) SetCursor(t types.VirtualTime) {
	q.cursor = t
}

// Cursor returns the current watermark.
func (q *InputQueue) Cursor() types.VirtualTime {
	return q.cursor
}

// RemoveSmallest removes and returns the minimum-ReceiveTime message.
// Exposed for fossil collection; the core never calls this during normal
// operation.
func (q *InputQueue) RemoveSmallest() (types.Message, bool) {
	min := q.tree.Min()
	if min == nil {
		return types.Message{}, false
	}
	it := min.(inputItem).item
	q.tree.Delete(min)
	delete(q.byKey, keyOf(it.message))
	return it.message, true
}

// Len reports how many messages are currently stored, processed and
// pending combined.
func (q *InputQueue) Len() int {
	return q.tree.Len()
}
