package metrics

import (
	"strings"
	"testing"

	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

func TestCollector_ObserveStepIncrementsCounter(t *testing.T) {
	c := NewCollector()
	c.ObserveStep(1, types.Processed)
	c.ObserveStep(1, types.Processed)
	c.ObserveStep(1, types.Skip)

	text, err := c.DumpText()
	if err != nil {
		t.Fatalf("unexpected error dumping metrics: %v", err)
	}
	if !strings.Contains(text, "timewarp_steps_total") {
		t.Fatalf("expected the steps counter family in the dump, got:\n%s", text)
	}
}

func TestCollector_ObserveRollbackRecordsDepth(t *testing.T) {
	c := NewCollector()
	c.ObserveRollback(2, 5, 10, 3)

	text, err := c.DumpText()
	if err != nil {
		t.Fatalf("unexpected error dumping metrics: %v", err)
	}
	if !strings.Contains(text, "timewarp_rollbacks_total") {
		t.Fatalf("expected the rollbacks counter family, got:\n%s", text)
	}
	if !strings.Contains(text, "timewarp_rollback_depth_ticks") {
		t.Fatalf("expected the rollback depth histogram, got:\n%s", text)
	}
}

func TestCollector_ObserveQueueSizesSetsGauges(t *testing.T) {
	c := NewCollector()
	c.ObserveQueueSizes(1, 4, 2, 7)

	text, err := c.DumpText()
	if err != nil {
		t.Fatalf("unexpected error dumping metrics: %v", err)
	}
	for _, family := range []string{"timewarp_input_queue_size", "timewarp_output_queue_size", "timewarp_state_history_size"} {
		if !strings.Contains(text, family) {
			t.Fatalf("expected %s in the dump, got:\n%s", family, text)
		}
	}
}
