package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"SentiPull/internal/domain/models"
	"SentiPull/internal/handler/api"
	"SentiPull/internal/usecase"
	pkgch "SentiPull/pkg/clickhouse"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	applogger "SentiPull/pkg/logger"
)

// reportRows is how many ranked rows a batch run logs.
const reportRows = 20

// App encapsulates the application lifecycle for both modes.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	pipeline   *usecase.Pipeline
	httpServer *xhttp.Server
	hub        *api.Hub
	chClient   *pkgch.Client
	closers    []func() error
	serving    bool
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	httpServer *xhttp.Server,
	hub *api.Hub,
	chClient *pkgch.Client,
) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	return &App{
		cfg:        cfg,
		l:          l,
		pipeline:   pipeline,
		httpServer: httpServer,
		hub:        hub,
		chClient:   chClient,
	}
}

// OnClose registers a cleanup run during shutdown, in registration order.
func (a *App) OnClose(fn func() error) { a.closers = append(a.closers, fn) }

// RunOnce executes a single batch run. An empty run is not an error.
func (a *App) RunOnce(ctx context.Context) error {
	defer a.shutdown(ctx)

	res, err := a.pipeline.Run(ctx)
	if res != nil {
		a.reportSources(res.Sources)
	}
	if errors.Is(err, models.ErrNoData) {
		a.l.Info("no tickers found")
		return nil
	}
	if err != nil {
		a.l.Error("run failed", applogger.Error(err))
		return err
	}
	a.report(res)
	return nil
}

// Serve starts the dashboard and blocks until interrupted.
func (a *App) Serve() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.serving = true
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("dashboard started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("output_dir", a.cfg.Output.Dir),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.l.Info("shutting down...")

	if a.serving && a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.hub != nil {
		a.hub.Close()
	}

	// Flush sinks (kafka producer) before dropping the connection pools
	if a.pipeline != nil {
		if err := a.pipeline.Close(); err != nil {
			a.l.Warn("sink close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}

func (a *App) reportSources(sources []models.SourceResult) {
	for _, s := range sources {
		if s.Err != nil {
			a.l.Warn("source failed", applogger.String("source", s.Source), applogger.Error(s.Err))
			continue
		}
		a.l.Info("source fetched",
			applogger.String("source", s.Source),
			applogger.Int("posts", s.Posts),
			applogger.Int("rows", s.Rows),
		)
	}
}

func (a *App) report(res *models.RunResult) {
	s := res.Summary
	a.l.Info("market summary",
		applogger.Int("total_tickers", s.Total),
		applogger.Float64("long_pct", s.LongPct),
		applogger.Float64("short_pct", s.ShortPct),
		applogger.Float64("neutral_pct", s.NeutralPct),
		applogger.Float64("avg_sentiment", s.AvgSentiment),
		applogger.Float64("weighted_sentiment", s.WeightedSentiment),
		applogger.String("avg_volatility", s.AvgVolatility.String()),
		applogger.Any("source_activity", s.SourceActivity),
		applogger.String("market", string(s.Market)),
	)
	if fi, err := os.Stat(res.Context.SnapshotPath); err == nil {
		a.l.Info("snapshot saved",
			applogger.String("path", res.Context.SnapshotPath),
			applogger.String("size", humanize.Bytes(uint64(fi.Size()))),
		)
	}

	n := len(res.Rows)
	if n > reportRows {
		n = reportRows
	}
	for i, r := range res.Rows[:n] {
		a.l.Info("ranked",
			applogger.Int("rank", i+1),
			applogger.String("ticker", r.Ticker),
			applogger.String("source", r.Source),
			applogger.Int("mentions", r.Mentions),
			applogger.Float64("avg", r.AvgSentiment),
			applogger.Float64("weighted", r.WeightedSentiment),
			applogger.String("volatility", r.SentimentVolatility.String()),
			applogger.Float64("net", r.NetSentiment),
			applogger.String("momentum", r.Momentum.String()),
			applogger.String("signal", string(r.Signal)),
		)
	}
}
