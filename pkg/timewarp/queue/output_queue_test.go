package queue

import (
	"testing"

	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

func sentAt(send types.VirtualTime, payload types.Payload) types.Message {
	return types.Message{SendTime: send, ReceiveTime: send + 1, Sender: 1, Receiver: 2, Sign: types.Positive, Payload: payload}
}

func TestOutputQueue_RangeInclusive(t *testing.T) {
	q := NewOutputQueue()
	for _, t0 := range []types.VirtualTime{1, 2, 3, 4, 5} {
		q.Push(sentAt(t0, new(int)))
	}

	got := q.Range(2, 4)
	if len(got) != 3 {
		t.Fatalf("expected 3 messages in [2,4], got %d", len(got))
	}
	for _, m := range got {
		if m.SendTime < 2 || m.SendTime > 4 {
			t.Fatalf("message %v fell outside the requested range", m)
		}
	}
}

func TestOutputQueue_RangeEmptyWhenHiBelowLo(t *testing.T) {
	q := NewOutputQueue()
	q.Push(sentAt(1, new(int)))
	if got := q.Range(5, 1); len(got) != 0 {
		t.Fatalf("expected empty range when hi < lo, got %d", len(got))
	}
}

func TestOutputQueue_AnnihilatingPush(t *testing.T) {
	q := NewOutputQueue()
	payload := new(int)
	positive := sentAt(1, payload)

	q.Push(positive)
	if q.Len() != 1 {
		t.Fatalf("expected len 1, got %d", q.Len())
	}
	q.Push(positive.Negate())
	if q.Len() != 0 {
		t.Fatalf("expected annihilation to empty the queue, got %d", q.Len())
	}
}

func TestOutputQueue_Pop(t *testing.T) {
	q := NewOutputQueue()
	q.Push(sentAt(3, new(int)))
	q.Push(sentAt(1, new(int)))

	msg, ok := q.Pop()
	if !ok || msg.SendTime != 1 {
		t.Fatalf("expected smallest send_time 1 popped first, got %v ok=%v", msg, ok)
	}
}
