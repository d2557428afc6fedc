// Command timewarpctl replays the worked scenarios of spec.md §8 against
// the real core.Machine and transport.LocalTransport implementations, the
// way the teacher's fuzzy/commit_test.go drives pkg/mcast end-to-end but
// packaged as a standalone CLI instead of a test binary.
package main

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/jabolina/timewarp/pkg/timewarp/metrics"
)

var (
	app = kingpin.New("timewarpctl", "Replay optimistic rollback scenarios over the virtual-time kernel.")

	runCmd      = app.Command("run", "Run one or all scenarios and print a colorized trace.")
	runScenario = runCmd.Flag("scenario", "Scenario letter (A-H). Omit to run all.").Short('s').String()
	runVersion  = runCmd.Flag("peer-protocol-version", "Protocol version advertised by a simulated peer, checked before the run starts.").Default(protocolVersion).String()

	serveCmd  = app.Command("serve-metrics", "Run every scenario once, then serve a fresh metrics.Collector over HTTP in Prometheus text format. The scenarios do not record into the served collector.")
	serveAddr = serveCmd.Flag("addr", "Listen address.").Default(":9100").String()
)

func main() {
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case runCmd.FullCommand():
		os.Exit(runRun())
	case serveCmd.FullCommand():
		os.Exit(runServe())
	}
}

func runRun() int {
	if err := checkCompatible(*runVersion); err != nil {
		fmt.Fprintf(os.Stderr, "refusing to run: %v\n", err)
		return 1
	}

	tr := newTrace()
	runID := uuid.New()

	selected := scenarios
	if *runScenario != "" {
		s, ok := scenarioByName(*runScenario)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *runScenario)
			return 1
		}
		selected = []scenario{s}
	}

	failures := 0
	for _, s := range selected {
		tr.Step("[run=%s] scenario %s: %s", runID, s.name, s.description)
		if err := runWithRecovery(tr, s); err != nil {
			tr.Rollback("scenario %s FAILED: %v", s.name, err)
			failures++
			continue
		}
	}
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d scenario(s) failed\n", failures)
		return 1
	}
	return 0
}

// runWithRecovery is the harness-level recover boundary spec.md §7
// describes: a types.InvariantViolation escaping a scenario's core usage
// is a fatal-class signal, and the harness -- here, the CLI -- is the one
// that decides what to do with it, instead of letting it take down the
// whole process.
func runWithRecovery(tr *trace, s scenario) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invariant violation: %v", r)
		}
	}()
	return s.run(tr)
}

func runServe() int {
	collector := metrics.NewCollector()
	tr := newTrace()

	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.name)
	}
	sort.Strings(names)
	for _, name := range names {
		s, _ := scenarioByName(name)
		if err := runWithRecovery(tr, s); err != nil {
			tr.Rollback("scenario %s failed during warmup: %v", s.name, err)
		}
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         *serveAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	tr.Commit("serving metrics on %s (/metrics, /healthz)", *serveAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "metrics server stopped: %v\n", err)
		return 1
	}
	return 0
}
