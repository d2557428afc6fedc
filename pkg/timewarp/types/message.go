package types

import "fmt"

// VirtualTime is the integer coordinate every machine advances along.
// It is signed so that a rollback to receive_time zero can still park
// the input queue cursor strictly below the smallest legal timestamp.
type VirtualTime int64

// MachineID is an opaque identifier for a logical process.
type MachineID uint64

// Sign is the polarity bit distinguishing a message from its antimessage.
// Equality and ordering used by the queues ignore Sign entirely; it only
// matters when a message reaches the head of a queue.
type Sign int

const (
	// Positive messages carry a real event for the user handler.
	Positive Sign = iota
	// Negative messages (antimessages) annihilate their positive twin.
	Negative
)

func (s Sign) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("sign(%d)", int(s))
	}
}

// Opposite returns the other polarity.
func (s Sign) Opposite() Sign {
	if s == Positive {
		return Negative
	}
	return Positive
}

// Payload is the opaque, shared, read-only value a Message carries.
//
// Annihilation compares payloads with Go's native interface equality.
// For that comparison to behave as reference identity -- which is what
// Jefferson-style antimessage matching requires -- the concrete value
// held by a Payload must be comparable by address: a pointer, or any
// other stable identity handle (a generational id, an interned string).
// Two independently constructed payloads that merely compare equal by
// value must never share a Payload slot, or they will falsely annihilate.
type Payload interface{}

// Message is an immutable event record carrying timestamps, endpoints,
// sign and a shared payload. Two messages are annihilation-equivalent
// iff they agree on SendTime, ReceiveTime, Sender, Receiver and Payload
// identity, irrespective of Sign.
type Message struct {
	SendTime    VirtualTime
	ReceiveTime VirtualTime
	Sender      MachineID
	Receiver    MachineID
	Sign        Sign
	Payload     Payload
}

// Equivalent reports whether a and b are annihilation-equivalent: equal
// on every field except Sign.
func Equivalent(a, b Message) bool {
	return a.SendTime == b.SendTime &&
		a.ReceiveTime == b.ReceiveTime &&
		a.Sender == b.Sender &&
		a.Receiver == b.Receiver &&
		a.Payload == b.Payload
}

// Negate returns a copy of m with the opposite sign -- its antimessage.
func (m Message) Negate() Message {
	n := m
	n.Sign = m.Sign.Opposite()
	return n
}

func (m Message) String() string {
	return fmt.Sprintf("Message{send=%d recv=%d %d->%d sign=%s}",
		m.SendTime, m.ReceiveTime, m.Sender, m.Receiver, m.Sign)
}
