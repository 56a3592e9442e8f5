package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/bindvar/internal/config"
	"github.com/vango-dev/bindvar/internal/errors"
	"github.com/vango-dev/bindvar/internal/presence"
	"github.com/vango-dev/bindvar/internal/telemetry"
	"github.com/vango-dev/bindvar/pkg/binding"
	"github.com/vango-dev/bindvar/pkg/bindmetrics"
	"github.com/vango-dev/bindvar/pkg/bindtrace"
	"github.com/vango-dev/bindvar/pkg/inspect"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo graph behind the live inspector",
		Long: `Run a small graph on a frame loop and serve the inspector.

The inspector exposes:
  /vars         current value of every tracked cell
  /vars/{name}  one cell
  /ws           change and presence frames over WebSocket
  /metrics      Prometheus metrics
  /healthz      liveness

Settings come from defaults, then --config, then BINDVAR_* variables.`,
		Example: `  bindvar serve
  bindvar serve --config bindvar.yaml
  BINDVAR_LOG_LEVEL=debug bindvar serve --addr :7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspector.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (yaml or json)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Inspector listen address")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	logger := cfg.Logger(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	observers := []binding.Observer{binding.LogObserver(logger)}
	if cfg.Metrics.Enabled {
		observers = append(observers, bindmetrics.New(
			bindmetrics.WithNamespace(cfg.Metrics.Namespace),
			bindmetrics.WithRegistry(promReg),
		))
	}

	tp, shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		return errors.Newf(errors.CategoryConfig, "cannot set up tracing").Wrap(err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()
	if cfg.Tracing.Enabled {
		observers = append(observers, bindtrace.New(bindtrace.WithTracerProvider(tp)))
	}

	// The graph is built here and handed to the frame loop; from then on
	// only the loop touches it.
	sc := newScene(time.Now(), binding.Observers(observers...))

	reg := inspect.NewRegistry()
	hub := inspect.NewHub(reg, logger)
	defer hub.Close()

	untrack, err := sc.track(reg)
	if err != nil {
		return err
	}

	pres := presence.New(presence.Config{
		Enabled:  cfg.Presence.Enabled,
		Interval: cfg.Presence.Interval.Std(),
	}, presence.Publishers(hub, presence.LogPublisher{Logger: logger}), logger)
	pres.Watch(sc.activity.ReadOnly())

	srv := &http.Server{
		Handler:           inspect.NewHandler(reg, hub, promReg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	var listenAddr string
	if cfg.Inspector.Addr != "" {
		ln, err := net.Listen("tcp", cfg.Inspector.Addr)
		if err != nil {
			return errors.New(errors.CodeInspectorServe).
				WithDetail(cfg.Inspector.Addr).
				Wrap(err)
		}
		listenAddr = ln.Addr().String()
		go func() {
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				serveErr <- err
			}
		}()
	}

	if err := pres.Start(ctx); err != nil {
		return errors.New(errors.CodePresence).Wrap(err)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		frameLoop(ctx, sc, cfg.FrameInterval(), logger)
	}()

	printBanner(out)
	if listenAddr != "" {
		success(out, "Inspector listening on http://%s", listenAddr)
	} else {
		success(out, "Running without inspector")
	}
	info(out, "Frame rate %d/s, presence every %s", cfg.Frame.Rate, cfg.Presence.Interval.Std())
	info(out, "Press Ctrl+C to stop")

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = errors.New(errors.CodeInspectorServe).Wrap(err)
		stop()
	}

	<-loopDone
	pres.Stop()
	pres.Unwatch()
	untrack()

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); listenAddr != "" && err != nil {
		logger.Warn("inspector shutdown failed", "error", err)
	}

	if runErr == nil {
		success(out, "Stopped")
	}
	return runErr
}

// frameLoop advances the scene once per tick until ctx is done. It is the
// only goroutine that touches the scene's cells.
func frameLoop(ctx context.Context, sc *scene, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := sc.advance(now.Sub(last)); err != nil {
				logger.Warn("frame failed", "error", err)
			}
			last = now
		}
	}
}
