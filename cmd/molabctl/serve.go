package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/molab-dev/molab/pkg/inspect"
	"github.com/molab-dev/molab/pkg/runtime"
	"github.com/molab-dev/molab/pkg/state"
)

func serveCmd() *cobra.Command {
	var addr string
	var tick time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registry introspection server with demo state",
		Long: `serve installs an execution context, seeds a few demo states that
mutate on a timer, and exposes the registry over HTTP:

  GET /states        all bindings as JSON
  GET /states/{name} one binding
  GET /metrics       Prometheus exposition
  GET /healthz       liveness`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, tick)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8744", "listen address")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "demo state mutation interval")
	return cmd
}

func runServe(addr string, tick time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	metrics := state.NewMetrics()
	registry := state.NewRegistry(
		state.WithLogger(logger),
		state.WithMetrics(metrics),
	)
	ctx := runtime.NewExecContext(
		runtime.WithRegistry(registry),
		runtime.WithLogger(logger),
		runtime.WithMetrics(metrics),
		runtime.WithUpdateHandler(func(c state.Cell) {
			logger.Info("state changed", "names", registry.BoundNames(c))
		}),
	)
	ctx.Install()
	defer ctx.Uninstall()

	_, setTicks := state.New(0, state.Named("ticks"))
	getStarted, _ := state.New(time.Now(), state.Named("started_at"))
	_, _ = state.New("serving", state.Named("status"), state.InContext("demo"))

	stop := make(chan struct{})
	go func() {
		// Mutations run on this goroutine, so it carries its own context.
		ctx.Install()
		defer ctx.Uninstall()

		t := time.NewTicker(tick)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				setTicks.Update(func(n int) int { return n + 1 })
			case <-stop:
				return
			}
		}
	}()
	defer close(stop)

	server := &http.Server{
		Addr:    addr,
		Handler: inspect.Handler(registry, inspect.WithLogger(logger)),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("inspect server listening", "addr", addr, "started", getStarted.Get())
		errc <- server.ListenAndServe()
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("inspect server: %w", err)
		}
		return nil
	case sig := <-sigc:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
