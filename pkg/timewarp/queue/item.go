// Package queue implements the two annihilating, timestamp-ordered
// multisets the rollback engine is built on: the input queue (keyed by
// receive time, with a cursor) and the output queue (keyed by send time,
// with an inclusive range scan). Both share the same annihilation
// discipline: inserting a message that is annihilation-equivalent to one
// already present removes both and stores nothing.
package queue

import (
	"github.com/google/btree"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// equivKey is the five-field identity a queue uses to detect an
// antimessage/message pair, independent of Sign and independent of
// whichever insertion order assigned the ordering key.
type equivKey struct {
	sendTime, receiveTime types.VirtualTime
	sender, receiver      types.MachineID
	payload               types.Payload
}

func keyOf(m types.Message) equivKey {
	return equivKey{
		sendTime:    m.SendTime,
		receiveTime: m.ReceiveTime,
		sender:      m.Sender,
		receiver:    m.Receiver,
		payload:     m.Payload,
	}
}

// item is the btree.Item wrapper. It carries the message, the ordering
// key each queue fills in (ReceiveTime for the input queue, SendTime for
// the output queue), and a monotonic sequence number assigned at
// insertion. Both queues order items with lessByPrimary; seq keeps the
// "secondary key order among equal primary times" stable within a single
// machine (spec.md §3 leaves the exact order unspecified).
type item struct {
	message types.Message
	primary types.VirtualTime
	seq     uint64
}

func lessByPrimary(a, b *item) bool {
	if a.primary != b.primary {
		return a.primary < b.primary
	}
	return a.seq < b.seq
}

type inputItem struct{ *item }

func (i inputItem) Less(than btree.Item) bool {
	return lessByPrimary(i.item, than.(inputItem).item)
}

type outputItem struct{ *item }

func (i outputItem) Less(than btree.Item) bool {
	return lessByPrimary(i.item, than.(outputItem).item)
}
