package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"SentiPull/internal/domain/models"
	domrepo "SentiPull/internal/domain/repository"
	"SentiPull/internal/service/ratelimit"
	"SentiPull/pkg/logger"
	"SentiPull/pkg/metrics"
)

const fetchLimiterKey = "fetch"

// PipelineConfig holds the run-level settings of a Pipeline.
type PipelineConfig struct {
	Sources      []string
	OutputDir    string
	FetchTimeout time.Duration
}

// Pipeline runs one end-to-end batch: fetch, aggregate, rank, summarize, persist.
type Pipeline struct {
	cfg      PipelineConfig
	source   domrepo.PostSource
	agg      *Aggregator
	history  domrepo.HistoryStore
	snapshot domrepo.SnapshotWriter
	sinks    []domrepo.RowSink
	limiter  *ratelimit.Limiter
	metrics  domrepo.Metrics
	logger   *logger.Logger
	now      func() time.Time
}

// PipelineOption configures optional Pipeline collaborators.
type PipelineOption func(*Pipeline)

func WithSinks(sinks ...domrepo.RowSink) PipelineOption {
	return func(p *Pipeline) { p.sinks = append(p.sinks, sinks...) }
}

func WithLimiter(l *ratelimit.Limiter) PipelineOption {
	return func(p *Pipeline) { p.limiter = l }
}

func WithMetrics(m domrepo.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

func WithLogger(l *logger.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(cfg PipelineConfig, source domrepo.PostSource, agg *Aggregator, history domrepo.HistoryStore, snapshot domrepo.SnapshotWriter, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		source:   source,
		agg:      agg,
		history:  history,
		snapshot: snapshot,
		metrics:  metrics.Noop{},
		logger:   logger.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg.FetchTimeout <= 0 {
		p.cfg.FetchTimeout = 10 * time.Second
	}
	return p
}

type fetchItem struct {
	idx    int
	rows   []models.ScoredRow
	result models.SourceResult
}

// Run executes a full batch. It returns models.ErrNoData when no source produced a
// ticker mention, and a *models.PersistenceError when the snapshot or history could
// not be written. Individual source failures are reported in RunResult.Sources.
func (p *Pipeline) Run(ctx context.Context) (*models.RunResult, error) {
	started := time.Now()
	defer func() { p.metrics.RecordLatency("run", time.Since(started).Seconds()) }()

	rc := models.NewRunContext(p.now(), p.cfg.OutputDir)

	history, err := p.history.Load(ctx)
	if err != nil {
		p.metrics.RecordError("history_load")
		p.logger.Warn("history unavailable, continuing without baseline", logger.Error(err))
		history = map[string]models.HistoryBaseline{}
	}

	ch := make(chan fetchItem, len(p.cfg.Sources))
	var wg sync.WaitGroup
	for i, src := range p.cfg.Sources {
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			ch <- p.processSource(ctx, i, src, history, rc.Now)
		}(i, src)
	}
	go func() { wg.Wait(); close(ch) }()

	perSource := make([][]models.ScoredRow, len(p.cfg.Sources))
	results := make([]models.SourceResult, len(p.cfg.Sources))
	for it := range ch {
		perSource[it.idx] = it.rows
		results[it.idx] = it.result
	}

	var rows []models.ScoredRow
	for _, rs := range perSource {
		rows = append(rows, rs...)
	}
	if len(rows) == 0 {
		return &models.RunResult{Context: rc, Sources: results}, models.ErrNoData
	}

	SortRows(rows)
	summary := Summarize(rows)

	if err := p.snapshot.Write(ctx, rc, rows, summary); err != nil {
		p.metrics.RecordError("snapshot")
		return nil, asPersistence("write snapshot", rc.SnapshotPath, err)
	}

	if err := p.history.Save(ctx, rc, DeriveBaselines(rows)); err != nil {
		p.metrics.RecordError("history_save")
		return nil, asPersistence("save history", rc.HistoryPath, err)
	}

	p.publish(ctx, rc, rows, summary)
	p.metrics.RecordMarket(summary)

	p.logger.Info("run complete",
		logger.Int("rows", len(rows)),
		logger.Int("sources", len(p.cfg.Sources)),
		logger.String("market", string(summary.Market)),
		logger.String("snapshot", rc.SnapshotPath),
		logger.String("elapsed", humanize.RelTime(started, time.Now(), "", "")),
	)

	return &models.RunResult{Context: rc, Rows: rows, Summary: summary, Sources: results}, nil
}

func (p *Pipeline) processSource(ctx context.Context, idx int, src string, history map[string]models.HistoryBaseline, now time.Time) fetchItem {
	label := p.source.Label(src)
	it := fetchItem{idx: idx, result: models.SourceResult{Source: label}}

	posts, err := p.fetch(ctx, src)
	if err != nil {
		p.metrics.RecordError("fetch")
		p.logger.Error("source fetch failed", logger.String("source", label), logger.Error(err))
		it.result.Err = err
		return it
	}
	p.metrics.RecordPostsFetched(label, len(posts))

	it.rows = p.agg.Aggregate(ctx, posts, label, history, now)
	it.result.Posts = len(posts)
	it.result.Rows = len(it.rows)
	p.metrics.RecordRows(label, len(it.rows))
	p.logger.Info("source processed",
		logger.String("source", label),
		logger.Int("posts", len(posts)),
		logger.Int("tickers", len(it.rows)),
	)
	return it
}

// fetch waits for the shared limiter, then fetches under its own timeout.
// Panics and errors both become a *models.FetchError.
func (p *Pipeline) fetch(ctx context.Context, src string) (posts []models.RawPost, err error) {
	defer func() {
		if r := recover(); r != nil {
			posts = nil
			err = &models.FetchError{Source: src, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, fetchLimiterKey); err != nil {
			return nil, &models.FetchError{Source: src, Err: err}
		}
	}

	fctx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	started := time.Now()
	posts, err = p.source.Fetch(fctx, src)
	p.metrics.RecordLatency("fetch", time.Since(started).Seconds())
	if err != nil {
		var fe *models.FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &models.FetchError{Source: src, Err: err}
	}
	return posts, nil
}

func (p *Pipeline) publish(ctx context.Context, rc models.RunContext, rows []models.ScoredRow, summary models.MarketSummary) {
	for _, s := range p.sinks {
		started := time.Now()
		if err := s.Publish(ctx, rc, rows, summary); err != nil {
			p.metrics.RecordError("sink_" + s.Name())
			p.logger.Warn("sink publish failed", logger.String("sink", s.Name()), logger.Error(err))
			continue
		}
		p.metrics.RecordLatency("sink_"+s.Name(), time.Since(started).Seconds())
	}
}

// Close releases the sinks.
func (p *Pipeline) Close() error {
	var errs []error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func asPersistence(op, path string, err error) error {
	var pe *models.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &models.PersistenceError{Op: op, Path: path, Err: err}
}
