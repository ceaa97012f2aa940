package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/molab-dev/molab/pkg/runtime"
	"github.com/molab-dev/molab/pkg/state"
)

type benchConfig struct {
	States  int
	Updates int
	Churn   int
}

func benchCmd() *cobra.Command {
	config := benchConfig{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Stress the state registry and report timings",
		Long: `bench creates a population of reactive states, mutates them through
their setters, then churns the scope (re-registration plus pruning) the way
a notebook runtime does on re-evaluation. It reports per-phase timings and
the number of update notifications observed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(config)
		},
	}

	cmd.Flags().IntVar(&config.States, "states", 10000, "number of states to create")
	cmd.Flags().IntVar(&config.Updates, "updates", 100000, "number of setter calls")
	cmd.Flags().IntVar(&config.Churn, "churn", 10, "scope re-evaluation rounds")
	return cmd
}

func runBench(config benchConfig) error {
	if config.States <= 0 {
		return fmt.Errorf("--states must be positive, got %d", config.States)
	}

	var notified atomic.Uint64

	ctx := runtime.NewExecContext(
		runtime.WithUpdateHandler(func(state.Cell) {
			notified.Add(1)
		}),
	)
	ctx.Install()
	defer ctx.Uninstall()

	reg := ctx.StateRegistry()

	// Phase 1: creation + self-registration.
	start := time.Now()
	setters := make([]*state.Setter[int], config.States)
	for i := range setters {
		_, set := state.New(0, state.Named(fmt.Sprintf("s%d", i)))
		setters[i] = set
	}
	createDur := time.Since(start)

	// Phase 2: mutations.
	start = time.Now()
	for i := 0; i < config.Updates; i++ {
		setters[i%len(setters)].Update(func(n int) int { return n + 1 })
	}
	updateDur := time.Since(start)

	// Phase 3: scope churn. Every round re-registers the full scope, then
	// prunes to the surviving half, the way re-evaluated code drops names.
	start = time.Now()
	scope := make(map[string]any, len(setters))
	active := make(map[string]bool, len(setters))
	for i, set := range setters {
		name := fmt.Sprintf("s%d", i)
		scope[name] = set.State()
		if i%2 == 0 {
			active[name] = true
		}
	}
	for round := 0; round < config.Churn; round++ {
		reg.RegisterScope(scope, nil)
		reg.RetainActive(active)
	}
	churnDur := time.Since(start)

	fmt.Printf("states:    %d created in %v (%.0f/s)\n",
		config.States, createDur, rate(config.States, createDur))
	fmt.Printf("updates:   %d in %v (%.0f/s), %d notifications\n",
		config.Updates, updateDur, rate(config.Updates, updateDur), notified.Load())
	fmt.Printf("churn:     %d rounds in %v, %d bindings remain\n",
		config.Churn, churnDur, reg.Len())
	return nil
}

func rate(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}
