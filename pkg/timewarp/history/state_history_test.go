package history

import "testing"

func TestStateHistory_SeedsInitialEntry(t *testing.T) {
	h := New("initial")
	if h.Len() != 1 {
		t.Fatalf("expected exactly one seeded entry, got %d", h.Len())
	}
	snap, ok := h.MostRecentBefore(1)
	if !ok || snap != "initial" {
		t.Fatalf("expected the initial snapshot before time 1, got %v ok=%v", snap, ok)
	}
}

func TestStateHistory_MostRecentBeforeIsStrict(t *testing.T) {
	h := New("s0")
	h.Checkpoint(5, "s5")
	h.Checkpoint(10, "s10")

	snap, ok := h.MostRecentBefore(10)
	if !ok || snap != "s5" {
		t.Fatalf("expected the entry strictly before 10 to be s5, got %v ok=%v", snap, ok)
	}

	snap, ok = h.MostRecentBefore(11)
	if !ok || snap != "s10" {
		t.Fatalf("expected s10 strictly before 11, got %v ok=%v", snap, ok)
	}
}

func TestStateHistory_MostRecentBeforeZeroIsUndefined(t *testing.T) {
	h := New("s0")
	if _, ok := h.MostRecentBefore(0); ok {
		t.Fatalf("nothing should exist strictly before virtual time zero")
	}
}

func TestStateHistory_PurgeAtOrAfter(t *testing.T) {
	h := New("s0")
	h.Checkpoint(5, "s5")
	h.Checkpoint(10, "s10")
	h.PurgeAtOrAfter(5)
	if h.Len() != 1 {
		t.Fatalf("expected only the time-0 entry to survive, got %d", h.Len())
	}
}

func TestStateHistory_PurgeBeforeKeepsOneEntry(t *testing.T) {
	h := New("s0")
	h.Checkpoint(5, "s5")
	h.Checkpoint(10, "s10")
	h.PurgeBefore(10)
	if h.Len() != 2 {
		t.Fatalf("expected PurgeBefore to keep s5 (the entry immediately below 10) and s10, got %d", h.Len())
	}
	if _, ok := h.MostRecentBefore(10); !ok {
		t.Fatalf("MostRecentBefore(10) must still resolve after fossil collection to 10")
	}
}
