package queue

import (
	"github.com/google/btree"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// OutputQueue is the ordered multiset of messages a machine has sent,
// keyed by SendTime, with the same annihilating-insert discipline as
// InputQueue. It carries no cursor: rollback needs to scan an arbitrary
// [lo, hi] window of everything ever sent, not just a frontier.
//
// Not safe for concurrent use; see InputQueue.
type OutputQueue struct {
	tree  *btree.BTree
	byKey map[equivKey]*item
	seq   uint64
}

// NewOutputQueue creates an empty output queue.
func NewOutputQueue() *OutputQueue {
	return &OutputQueue{
		tree:  btree.New(degree),
		byKey: make(map[equivKey]*item),
	}
}

// Push performs an annihilating insert keyed by SendTime.
func (q *OutputQueue) Push(m types.Message) bool {
	key := keyOf(m)
	if existing, ok := q.byKey[key]; ok {
		delete(q.byKey, key)
		q.tree.Delete(outputItem{existing})
		return false
	}

	q.seq++
	it := &item{message: m, primary: m.SendTime, seq: q.seq}
	q.byKey[key] = it
	q.tree.ReplaceOrInsert(outputItem{it})
	return true
}

// Pop removes and returns the minimum-SendTime message. Exposed for
// fossil collection.
func (q *OutputQueue) Pop() (types.Message, bool) {
	min := q.tree.Min()
	if min == nil {
		return types.Message{}, false
	}
	it := min.(outputItem).item
	q.tree.Delete(min)
	delete(q.byKey, keyOf(it.message))
	return it.message, true
}

// Range returns all messages with lo <= SendTime <= hi, without removing
// them. Used by rollback to enumerate messages to negate.
func (q *OutputQueue) Range(lo, hi types.VirtualTime) []types.Message {
	if hi < lo {
		return nil
	}
	var out []types.Message
	from := outputItem{&item{primary: lo, seq: 0}}
	to := outputItem{&item{primary: hi + 1, seq: 0}}
	q.tree.AscendRange(from, to, func(i btree.Item) bool {
		out = append(out, i.(outputItem).item.message)
		return true
	})
	return out
}

// Len reports how many messages are currently stored.
func (q *OutputQueue) Len() int {
	return q.tree.Len()
}
