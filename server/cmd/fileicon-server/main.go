package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/malonaz/fileicon/go/fileicon"
	"github.com/malonaz/fileicon/go/fileicon/icon_service"
	"github.com/malonaz/fileicon/go/flags"
	"github.com/malonaz/fileicon/go/health"
	"github.com/malonaz/fileicon/go/http"
	"github.com/malonaz/fileicon/go/logging"
	"github.com/malonaz/fileicon/go/prometheus"
	"github.com/malonaz/fileicon/go/routine"
)

type Opts struct {
	Logging     *logging.Opts      `group:"Logging" namespace:"logging" env-namespace:"LOGGING"`
	HTTP        *http.Opts         `group:"HTTP" namespace:"http" env-namespace:"HTTP"`
	Prometheus  *prometheus.Opts   `group:"Prometheus" namespace:"prometheus" env-namespace:"PROMETHEUS"`
	Health      *health.Opts       `group:"Health" namespace:"health" env-namespace:"HEALTH"`
	IconService *icon_service.Opts `group:"Icon service" namespace:"icon" env-namespace:"ICON"`
}

func main() {
	ctx := context.Background()
	opts := &Opts{}
	flags.MustParse(opts)
	if err := run(ctx, opts); err != nil {
		slog.ErrorContext(ctx, "running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *Opts) error {
	if err := logging.Init(opts.Logging); err != nil {
		return err
	}
	log := slog.Default()

	service, err := icon_service.NewService(opts.IconService)
	if err != nil {
		return fmt.Errorf("creating icon service: %w", err)
	}
	service.WithLogger(log)

	httpServer := http.NewServer(opts.HTTP).WithLogger(log)
	if err := service.Register(httpServer); err != nil {
		return err
	}
	prometheusServer := prometheus.NewServer(opts.Prometheus).WithLogger(log)
	healthServer := health.NewServer(opts.Health).WithLogger(log)
	healthServer.Register("renderer", rendererCheck)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return httpServer.Serve(groupCtx) })
	group.Go(func() error { return prometheusServer.Serve(groupCtx) })
	group.Go(func() error { return healthServer.Serve(groupCtx) })
	group.Go(func() error {
		<-groupCtx.Done()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Duration(opts.HTTP.GracefulStopTimeout)*time.Second)
		defer stopCancel()
		stopErr := httpServer.GracefulStop()
		if err := prometheusServer.Stop(stopCtx); err != nil && stopErr == nil {
			stopErr = err
		}
		if err := healthServer.Stop(stopCtx); err != nil && stopErr == nil {
			stopErr = err
		}
		return stopErr
	})
	go handleSignals(groupCtx, log, cancel, func() { httpServer.Stop() })

	if opts.IconService.StylesFile != "" && opts.IconService.StylesReloadSeconds > 0 {
		interval := time.Duration(opts.IconService.StylesReloadSeconds) * time.Second
		reloader := routine.New("styles-reload", service.ReloadStyles, nil).
			WithLogger(log).
			WithTicker(interval).
			WithTimeout(interval).
			WithExponentialBackOff(time.Second, interval).
			Start(groupCtx)
		defer reloader.Close()
	}

	healthServer.MarkReady()
	log.InfoContext(ctx, "serving file icons", "styles", len(service.Styles()))
	return group.Wait()
}

// rendererCheck renders an icon of every type.
func rendererCheck(ctx context.Context) error {
	renderer := fileicon.NewRenderer()
	for _, typ := range fileicon.Types() {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts := fileicon.DefaultOptions().WithExtension(typ.String())
		opts.Type = typ
		if _, err := renderer.Render(opts).WriteTo(io.Discard); err != nil {
			return fmt.Errorf("rendering %s icon: %w", typ, err)
		}
	}
	return nil
}

// handleSignals stops the servers gracefully on the first SIGTERM or SIGINT, and immediately on the next.
func handleSignals(ctx context.Context, log *slog.Logger, graceful, immediate func()) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(c)
	select {
	case <-ctx.Done():
		return
	case sig := <-c:
		log.Info("received signal, stopping gracefully", "signal", sig)
		graceful()
	}
	sig := <-c
	log.Warn("received second signal, stopping now", "signal", sig)
	immediate()
}
