package main

import (
	"context"
	"fmt"

	"github.com/jabolina/timewarp/pkg/timewarp/core"
	"github.com/jabolina/timewarp/pkg/timewarp/examples"
	"github.com/jabolina/timewarp/pkg/timewarp/metrics"
	"github.com/jabolina/timewarp/pkg/timewarp/transport"
	"github.com/jabolina/timewarp/pkg/timewarp/types"
)

// scenario is one named, self-contained replay. Every scenario returns an
// error only when the outcome it asserts did not hold -- the CLI is the
// harness deciding whether that is worth a nonzero exit code, the core
// itself never judges its own correctness.
type scenario struct {
	name        string
	description string
	run         func(tr *trace) error
}

var scenarios = []scenario{
	{
		name:        "A",
		description: "in-order delivery, no rollback",
		run:         scenarioA,
	},
	{
		name:        "B",
		description: "single straggler forces one rollback",
		run:         scenarioB,
	},
	{
		name:        "C",
		description: "straggler arrives after sends, antimessages chase them down",
		run:         scenarioC,
	},
	{
		name:        "D",
		description: "antimessage annihilates a still-pending positive message",
		run:         scenarioD,
	},
	{
		name:        "E",
		description: "antimessage arrives before its positive twin",
		run:         scenarioE,
	},
	{
		name:        "F",
		description: "duplicate straggler rolls back twice to the same target",
		run:         scenarioF,
	},
	{
		name:        "G",
		description: "antimessage-first delivery over a real transport",
		run:         scenarioG,
	},
	{
		name:        "H",
		description: "nested rollback: a second, earlier straggler arrives mid-recovery",
		run:         scenarioH,
	},
}

func scenarioByName(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

func msg(send, recv types.VirtualTime, from, to types.MachineID, sign types.Sign, payload types.Payload) types.Message {
	return types.Message{SendTime: send, ReceiveTime: recv, Sender: from, Receiver: to, Sign: sign, Payload: payload}
}

func scenarioA(tr *trace) error {
	m := core.NewMachine(1, examples.NewCounterMachine(1))
	for _, t := range []types.VirtualTime{1, 2, 3} {
		m.Receive(msg(t, t, 0, 1, types.Positive, new(int)))
	}
	for i := 0; i < 3; i++ {
		outcome := m.Step()
		tr.Step("machine 1 step %d -> %s (clock=%d)", i, outcome, m.CurrentTime())
	}
	if m.CurrentTime() != 3 {
		return fmt.Errorf("expected final clock 3, got %d", m.CurrentTime())
	}
	tr.Commit("scenario A settled at clock=%d, no rollback", m.CurrentTime())
	return nil
}

func scenarioB(tr *trace) error {
	m := core.NewMachine(1, examples.NewCounterMachine(1))
	m.Receive(msg(1, 1, 0, 1, types.Positive, new(int)))
	m.Receive(msg(2, 2, 0, 1, types.Positive, new(int)))
	m.Step()
	m.Step()
	tr.Step("machine 1 reached clock=%d before the straggler", m.CurrentTime())

	straggler := msg(0, 1, 0, 1, types.Positive, new(int))
	anti := m.Receive(straggler)
	tr.Rollback("straggler at receive_time=1 rolled machine 1 back to clock=%d, %d antimessages", m.CurrentTime(), len(anti))
	if m.CurrentTime() != 1 {
		return fmt.Errorf("expected clock rolled back to 1, got %d", m.CurrentTime())
	}
	if len(anti) != 0 {
		return fmt.Errorf("expected no antimessages (machine never sent), got %d", len(anti))
	}
	tr.Commit("scenario B recovered cleanly")
	return nil
}

func scenarioC(tr *trace) error {
	var forwarded []types.Message
	capture := func(in types.Message) (types.Message, bool) {
		out := msg(in.ReceiveTime, in.ReceiveTime+1, 1, 2, types.Positive, new(int))
		forwarded = append(forwarded, out)
		return out, true
	}
	m := core.NewMachine(1, examples.NewRelayMachine(1, capture))
	for _, t := range []types.VirtualTime{1, 2, 3} {
		m.Receive(msg(t, t, 0, 1, types.Positive, new(int)))
		m.Step()
	}
	tr.Step("machine 1 sent %d downstream messages before the straggler", len(forwarded))

	straggler := msg(0, 2, 0, 1, types.Positive, new(int))
	anti := m.Receive(straggler)
	tr.Rollback("straggler at receive_time=2 emitted %d antimessages chasing sends made at/after it", len(anti))
	if len(anti) != 2 {
		return fmt.Errorf("expected 2 antimessages (sends at t=2 and t=3), got %d", len(anti))
	}
	tr.Commit("scenario C chased down %d in-flight sends", len(anti))
	return nil
}

func scenarioD(tr *trace) error {
	m := core.NewMachine(2, examples.NewCounterMachine(1))
	shared := new(int)
	positive := msg(1, 5, 1, 2, types.Positive, shared)
	m.Receive(positive)
	antimessage := positive.Negate()
	m.Receive(antimessage)
	tr.Step("machine 2 input queue length after positive+negative: %d", m.InputLen())
	if m.InputLen() != 0 {
		return fmt.Errorf("expected annihilation to empty the input queue, got len=%d", m.InputLen())
	}
	outcome := m.Step()
	if outcome != types.Idle {
		return fmt.Errorf("expected Idle after annihilation, got %s", outcome)
	}
	tr.Commit("scenario D: positive/negative pair annihilated before any Step touched it")
	return nil
}

func scenarioE(tr *trace) error {
	m := core.NewMachine(2, examples.NewCounterMachine(1))
	shared := new(int)
	positive := msg(1, 5, 1, 2, types.Positive, shared)
	antimessage := positive.Negate()

	m.Receive(antimessage)
	outcome := m.Step()
	tr.Step("antimessage alone at head of queue: Step -> %s", outcome)
	if outcome != types.Skip {
		return fmt.Errorf("expected Skip when only the antimessage is present, got %s", outcome)
	}

	m.Receive(positive)
	if m.InputLen() != 0 {
		return fmt.Errorf("expected the late positive to annihilate the antimessage, got len=%d", m.InputLen())
	}
	tr.Commit("scenario E: late-arriving positive annihilated the antimessage with no state change")
	return nil
}

func scenarioF(tr *trace) error {
	m := core.NewMachine(1, examples.NewCounterMachine(1))
	for _, t := range []types.VirtualTime{1, 2, 3} {
		m.Receive(msg(t, t, 0, 1, types.Positive, new(int)))
		m.Step()
	}
	first := m.Receive(msg(0, 2, 0, 1, types.Positive, new(int)))
	tr.Rollback("first straggler at t=2 rolled back to clock=%d", m.CurrentTime())
	m.Step()
	m.Step()
	second := m.Receive(msg(0, 2, 0, 1, types.Positive, new(int)))
	tr.Rollback("duplicate straggler at t=2 rolled back again to clock=%d", m.CurrentTime())
	if len(first) != 0 || len(second) != 0 {
		return fmt.Errorf("expected no antimessages from either rollback, got %d and %d", len(first), len(second))
	}
	tr.Commit("scenario F: repeated straggler at the same target handled idempotently")
	return nil
}

func scenarioG(tr *trace) error {
	ctx := context.Background()
	log := newScenarioLogger()
	tp := transport.NewLocalTransport(log)
	defer tp.Close()

	collector := metrics.NewCollector()
	sender := core.NewMachine(1, examples.NewRelayMachine(1, nil), core.WithCollector(collector))
	receiver := core.NewMachine(2, examples.NewCounterMachine(1), core.WithCollector(collector))
	tp.Register(1, sender)
	tp.Register(2, receiver)

	positive := msg(5, 10, 1, 2, types.Positive, new(int))
	antimessage := positive.Negate()

	if err := tp.Unicast(ctx, 2, antimessage); err != nil {
		return fmt.Errorf("delivering antimessage: %w", err)
	}
	tr.Step("antimessage delivered to machine 2 ahead of its positive twin")
	if err := tp.Unicast(ctx, 2, positive); err != nil {
		return fmt.Errorf("delivering positive: %w", err)
	}
	tr.Commit("scenario G: antimessage and then its positive twin handed to the transport for machine 2")
	return nil
}

func scenarioH(tr *trace) error {
	m := core.NewMachine(1, examples.NewCounterMachine(1))
	for _, t := range []types.VirtualTime{1, 2, 3} {
		m.Receive(msg(t, t, 0, 1, types.Positive, new(int)))
		m.Step()
	}

	m.Receive(msg(0, 2, 0, 1, types.Positive, new(int)))
	tr.Rollback("first straggler at t=2 rolled back to clock=%d", m.CurrentTime())
	m.Step()
	m.Step()
	tr.Step("machine 1 re-settled at clock=%d after the first recovery", m.CurrentTime())

	m.Receive(msg(0, 1, 0, 1, types.Positive, new(int)))
	tr.Rollback("second, earlier straggler at t=1 rolled back again to clock=%d", m.CurrentTime())
	if m.CurrentTime() != 1 {
		return fmt.Errorf("expected nested rollback to land on clock 1, got %d", m.CurrentTime())
	}
	tr.Commit("scenario H: rollback-of-a-rollback landed on the earlier target")
	return nil
}
