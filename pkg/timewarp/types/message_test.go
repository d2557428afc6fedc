package types

import "testing"

func TestMessage_NegateFlipsSignOnly(t *testing.T) {
	m := Message{SendTime: 1, ReceiveTime: 2, Sender: 1, Receiver: 2, Sign: Positive, Payload: new(int)}
	n := m.Negate()
	if n.Sign != Negative {
		t.Fatalf("expected Negate to flip sign to Negative, got %s", n.Sign)
	}
	if !Equivalent(m, n) {
		t.Fatalf("a message and its negation must remain annihilation-equivalent")
	}
}

func TestEquivalent_DistinguishesPayloadIdentity(t *testing.T) {
	a := Message{SendTime: 1, ReceiveTime: 2, Sender: 1, Receiver: 2, Payload: new(int)}
	b := Message{SendTime: 1, ReceiveTime: 2, Sender: 1, Receiver: 2, Payload: new(int)}
	if Equivalent(a, b) {
		t.Fatalf("two distinct pointer payloads must not compare equivalent even with identical scalar fields")
	}
}

func TestSign_Opposite(t *testing.T) {
	if Positive.Opposite() != Negative {
		t.Fatalf("expected Positive.Opposite() == Negative")
	}
	if Negative.Opposite() != Positive {
		t.Fatalf("expected Negative.Opposite() == Positive")
	}
}
