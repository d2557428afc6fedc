// Package metrics wires the kernel's ambient observability: Prometheus
// collectors tracking step outcomes, rollback activity and queue sizes
// per machine. None of this feeds back into the rollback protocol --
// spec.md §1 scopes GVT/fossil-collection policy and everything
// downstream of it out of the core, and metrics are purely downstream.
package metrics

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jabolina/timewarp/pkg/timewarp/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector implements core.Collector with Prometheus gauges and
// counters labeled by machine id. It satisfies the interface
// structurally, so core never needs to import this package.
type Collector struct {
	registry *prometheus.Registry

	stepsTotal        *prometheus.CounterVec
	rollbacksTotal    *prometheus.CounterVec
	antimessagesTotal *prometheus.CounterVec
	rollbackDepth     *prometheus.HistogramVec
	inputQueueSize    *prometheus.GaugeVec
	outputQueueSize   *prometheus.GaugeVec
	historySize       *prometheus.GaugeVec
}

// NewCollector builds a Collector registered against a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timewarp",
			Name:      "steps_total",
			Help:      "Number of Machine.Step calls, labeled by outcome.",
		}, []string{"machine", "outcome"}),
		rollbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timewarp",
			Name:      "rollbacks_total",
			Help:      "Number of straggler-triggered rollbacks.",
		}, []string{"machine"}),
		antimessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timewarp",
			Name:      "antimessages_emitted_total",
			Help:      "Number of antimessages emitted during rollback.",
		}, []string{"machine"}),
		rollbackDepth: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "timewarp",
			Name:      "rollback_depth_ticks",
			Help:      "Virtual-time distance a rollback jumped backwards.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"machine"}),
		inputQueueSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "timewarp",
			Name:      "input_queue_size",
			Help:      "Current number of messages held in a machine's input queue.",
		}, []string{"machine"}),
		outputQueueSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "timewarp",
			Name:      "output_queue_size",
			Help:      "Current number of messages held in a machine's output queue.",
		}, []string{"machine"}),
		historySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "timewarp",
			Name:      "state_history_size",
			Help:      "Current number of retained checkpoints.",
		}, []string{"machine"}),
	}
	c.registry.MustRegister(
		c.stepsTotal, c.rollbacksTotal, c.antimessagesTotal,
		c.rollbackDepth, c.inputQueueSize, c.outputQueueSize, c.historySize,
	)
	return c
}

// Registry exposes the underlying registry, e.g. for promhttp.Handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func label(id types.MachineID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ObserveStep implements core.Collector.
func (c *Collector) ObserveStep(machine types.MachineID, outcome types.StepOutcome) {
	c.stepsTotal.WithLabelValues(label(machine), outcome.String()).Inc()
}

// ObserveRollback implements core.Collector.
func (c *Collector) ObserveRollback(machine types.MachineID, target, previous types.VirtualTime, antimessages int) {
	c.rollbacksTotal.WithLabelValues(label(machine)).Inc()
	c.antimessagesTotal.WithLabelValues(label(machine)).Add(float64(antimessages))
	depth := previous - target
	if depth < 0 {
		depth = 0
	}
	c.rollbackDepth.WithLabelValues(label(machine)).Observe(float64(depth))
}

// ObserveQueueSizes implements core.Collector.
func (c *Collector) ObserveQueueSizes(machine types.MachineID, inputLen, outputLen, historyLen int) {
	l := label(machine)
	c.inputQueueSize.WithLabelValues(l).Set(float64(inputLen))
	c.outputQueueSize.WithLabelValues(l).Set(float64(outputLen))
	c.historySize.WithLabelValues(l).Set(float64(historyLen))
}

// DumpText renders every collected metric in the Prometheus text exposition
// format, using prometheus/common/expfmt -- handy where no HTTP server
// scrapes the registry, as in this package's tests.
func (c *Collector) DumpText() (string, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("gathering metrics: %w", err)
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return buf.String(), nil
}
