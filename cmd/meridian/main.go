// Command meridian is the minimal front-end spec.md §6.1 describes: it
// binds the core library's CLI surface onto engine.Config, wires the
// built-in ByteDetector and a small default macro table, and runs the tick
// loop against stdin/stdout until EOF, a signal, or a fatal error.
//
// This binary exists only to exercise the core library end-to-end; richer
// detector sets and macro tables are an external, out-of-scope concern
// (spec.md §1, §6.4).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/katalvlaran/meridian/core"
	"github.com/katalvlaran/meridian/engine"
	"github.com/katalvlaran/meridian/macro"
	"github.com/katalvlaran/meridian/sense"
	"github.com/katalvlaran/meridian/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type opts struct {
	nodes             uint32
	edges             uint32
	seed              int64
	statePath         string
	noSelfObservation bool
	tickMS            int
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "meridian",
		Short: "Continuous, homeostatic substrate process",
		Long: `meridian runs a single-process, single-threaded cooperative substrate:
a capacity-bounded activation graph that senses stdin, settles, learns,
adapts its own parameters, and acts by emitting macro payloads to stdout.

State persists to --state between runs; delete the file to start fresh.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
		SilenceUsage: true,
	}

	var flags *pflag.FlagSet = root.Flags()
	flags.Uint32Var(&o.nodes, "nodes", 8192, "vertex capacity")
	flags.Uint32Var(&o.edges, "edges", 65536, "edge capacity")
	flags.Int64Var(&o.seed, "seed", -1, "PRNG seed (default: time-based)")
	flags.StringVar(&o.statePath, "state", "./graph.state", "snapshot file path")
	flags.BoolVar(&o.noSelfObservation, "no-self-observation", false, "disable output-to-input feedback")
	flags.IntVar(&o.tickMS, "tick-ms", 50, "cooperative tick pacing, in milliseconds")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func run(ctx context.Context, o opts) error {
	if o.tickMS <= 0 {
		return invalidArgf("tick-ms must be > 0, got %d", o.tickMS)
	}
	if o.nodes == 0 {
		return invalidArgf("nodes must be > 0")
	}
	if o.edges == 0 {
		return invalidArgf("edges must be > 0")
	}

	log := telemetry.NewLogger(os.Stderr)
	metrics := telemetry.NewMetrics()

	cfg := engine.DefaultConfig()
	cfg.VertexCapacity = o.nodes
	cfg.EdgeCapacity = o.edges
	cfg.StatePath = o.statePath
	cfg.SelfObservation = !o.noSelfObservation
	cfg.TickInterval = time.Duration(o.tickMS) * time.Millisecond
	cfg.Seed = seedFor(o.seed)

	newDetector := func(a *core.Arena) sense.DetectorSet { return sense.NewByteDetector(a) }

	macros, err := defaultMacroTable()
	if err != nil {
		return invalidArgf("%v", err)
	}

	c, err := engine.NewCore(cfg, newDetector, macros)
	if err != nil {
		return fileLockedErr{err}
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(0, "starting", "nodes", o.nodes, "edges", o.edges, "state", o.statePath, "tick_ms", o.tickMS)

	reportDone := metrics.StartReporting(ctx, c, log, time.Second)
	defer reportDone()

	runErr := c.Run(ctx, os.Stdin, os.Stdout)
	if runErr != nil && errors.Is(runErr, context.Canceled) {
		log.Info(c.Tick(), "shutdown requested")
		return nil
	}
	if errors.Is(runErr, engine.ErrCapacityExhaustedFatal) {
		return capacityExhaustedErr{runErr}
	}
	return runErr
}

// defaultMacroTable gives the binary something to emit without depending on
// an external front-end: a handful of short, distinguishable byte payloads
// the action selector can learn utility for (spec.md §6.4 leaves the
// table's contents to whoever wires the core).
func defaultMacroTable() (*macro.StaticTable, error) {
	return macro.NewStaticTable(macro.WithPayloads(
		[]byte("."),
		[]byte("?"),
		[]byte("!"),
		[]byte(" "),
	))
}

func seedFor(flagVal int64) uint64 {
	if flagVal < 0 {
		return uint64(time.Now().UnixNano())
	}
	return uint64(flagVal)
}

func invalidArgf(format string, args ...any) error {
	return invalidArgErr{fmt.Errorf(format, args...)}
}

// The three wrapper error types below exist only so exitCodeFor can map an
// error back to spec.md §6.1's exit codes without engine/cobra needing to
// know anything about process exit status.
type invalidArgErr struct{ err error }

func (e invalidArgErr) Error() string { return e.err.Error() }
func (e invalidArgErr) Unwrap() error { return e.err }

type fileLockedErr struct{ err error }

func (e fileLockedErr) Error() string { return e.err.Error() }
func (e fileLockedErr) Unwrap() error { return e.err }

type capacityExhaustedErr struct{ err error }

func (e capacityExhaustedErr) Error() string { return e.err.Error() }
func (e capacityExhaustedErr) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	switch {
	case errors.As(err, &invalidArgErr{}):
		return 2
	case errors.As(err, &fileLockedErr{}):
		return 3
	case errors.As(err, &capacityExhaustedErr{}):
		return 4
	case err != nil:
		return 1
	default:
		return 0
	}
}
