package api

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	models "SentiPull/internal/domain/models"
	"SentiPull/internal/repository"
	"SentiPull/internal/service/metrics"
	"SentiPull/internal/service/ratelimit"
	"SentiPull/internal/usecase"
	"SentiPull/pkg/cache"
	xhttp "SentiPull/pkg/http"
	xlogger "SentiPull/pkg/logger"
)

const refreshKey = "refresh"

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*models.RunResult, error)
}

// DashboardOption configures DashboardHandler.
type DashboardOption func(*DashboardHandler)

// WithCache caches parsed snapshots for ttl.
func WithCache(c cache.Service, ttl time.Duration) DashboardOption {
	return func(h *DashboardHandler) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

// WithRefreshLimiter throttles /api/refresh.
func WithRefreshLimiter(rl *ratelimit.Limiter) DashboardOption {
	return func(h *DashboardHandler) { h.rl = rl }
}

// WithRowsLimit sets the default number of rows returned by /api/data.
func WithRowsLimit(n int) DashboardOption {
	return func(h *DashboardHandler) {
		if n > 0 {
			h.rowsLimit = n
		}
	}
}

// WithRunTimeout bounds a refresh-triggered run.
func WithRunTimeout(d time.Duration) DashboardOption {
	return func(h *DashboardHandler) {
		if d > 0 {
			h.runTimeout = d
		}
	}
}

// WithHub pushes run results to websocket clients.
func WithHub(hub *Hub) DashboardOption {
	return func(h *DashboardHandler) { h.hub = hub }
}

// DashboardHandler serves the latest snapshot and triggers runs.
type DashboardHandler struct {
	logger     *xlogger.Logger
	dir        string
	runner     Runner
	cache      cache.Service
	cacheTTL   time.Duration
	rl         *ratelimit.Limiter
	hub        *Hub
	rowsLimit  int
	runTimeout time.Duration

	running sync.Mutex
}

func NewDashboardHandler(logger *xlogger.Logger, dir string, runner Runner, opts ...DashboardOption) *DashboardHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.NewNop()
	}
	h := &DashboardHandler{
		logger:     logger,
		dir:        dir,
		runner:     runner,
		rowsLimit:  50,
		runTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rl == nil {
		h.rl = ratelimit.New(0, 1)
	}
	return h
}

var _ xhttp.Handler = (*DashboardHandler)(nil)

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/data", h.Data)
	g.GET("/summary", h.Summary)
	g.GET("/ticker/:ticker", h.Ticker)
	g.POST("/refresh", h.Refresh)
	g.GET("/refresh", h.Refresh)
	if h.hub != nil {
		g.GET("/stream", h.Stream)
	}
}

// DataPayload is the body of /api/data.
type DataPayload struct {
	Rows         []models.ScoredRow   `json:"data"`
	Summary      models.MarketSummary `json:"summary"`
	TotalTickers int                  `json:"total_tickers"`
	Snapshot     string               `json:"snapshot,omitempty"`
}

// SummaryPayload is the body of /api/summary.
type SummaryPayload struct {
	Summary  models.MarketSummary `json:"summary"`
	Snapshot string               `json:"snapshot,omitempty"`
}

// SourceStatus reports one source of a refresh run.
type SourceStatus struct {
	Source string `json:"source"`
	Posts  int    `json:"posts"`
	Rows   int    `json:"rows"`
	Error  string `json:"error,omitempty"`
}

// RefreshPayload is the body of /api/refresh.
type RefreshPayload struct {
	Status   string                `json:"status"`
	RunID    string                `json:"run_id"`
	Snapshot string                `json:"snapshot,omitempty"`
	Rows     int                   `json:"rows"`
	Summary  *models.MarketSummary `json:"summary,omitempty"`
	Sources  []SourceStatus        `json:"sources"`
}

func (h *DashboardHandler) Data(c echo.Context) error {
	defer observe("data", time.Now())
	req := &models.DataRequest{}
	if c.QueryParam("limit") == "" {
		req.Limit = h.rowsLimit
	}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, name, err := h.latest(c.Request().Context())
	if err != nil {
		metrics.DashboardErrors.WithLabelValues("data").Inc()
		h.logger.Error("dashboard data error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	page := rows
	if page == nil {
		page = []models.ScoredRow{}
	}
	if len(page) > req.Limit {
		page = page[:req.Limit]
	}
	return xhttp.SuccessResponse(c, &DataPayload{
		Rows:         page,
		Summary:      usecase.Summarize(rows),
		TotalTickers: len(rows),
		Snapshot:     name,
	})
}

func (h *DashboardHandler) Summary(c echo.Context) error {
	defer observe("summary", time.Now())
	rows, name, err := h.latest(c.Request().Context())
	if err != nil {
		metrics.DashboardErrors.WithLabelValues("summary").Inc()
		h.logger.Error("dashboard summary error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, &SummaryPayload{Summary: usecase.Summarize(rows), Snapshot: name})
}

func (h *DashboardHandler) Ticker(c echo.Context) error {
	defer observe("ticker", time.Now())
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ticker := NormalizeTicker(req.Ticker)

	rows, _, err := h.latest(c.Request().Context())
	if err != nil {
		metrics.DashboardErrors.WithLabelValues("ticker").Inc()
		h.logger.Error("dashboard ticker error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	for i := range rows {
		if rows[i].Ticker == ticker {
			return xhttp.SuccessResponse(c, rows[i])
		}
	}
	return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data found for ticker %s", ticker))
}

func (h *DashboardHandler) Refresh(c echo.Context) error {
	defer observe("refresh", time.Now())
	if h.runner == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("refresh is not configured"))
	}
	if !h.running.TryLock() {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(models.ErrRunInProgress.Error()))
	}
	defer h.running.Unlock()
	if !h.rl.Allow(refreshKey) {
		h.logger.Warn("dashboard refresh rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh rate limited"))
	}

	// The run outlives a disconnecting client; only the timeout stops it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), h.runTimeout)
	defer cancel()

	res, err := h.runner.Run(ctx)
	payload := refreshPayload(res)
	switch {
	case errors.Is(err, models.ErrNoData):
		payload.Status = "no_data"
		h.broadcast("no_data", payload.RunID, nil, nil)
		return xhttp.SuccessResponse(c, payload)
	case err != nil:
		metrics.DashboardErrors.WithLabelValues("refresh").Inc()
		h.logger.Error("dashboard refresh failed", xlogger.Error(err))
		h.broadcast("error", payload.RunID, nil, err)
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("run failed: %v", err).WithError(err))
	}

	payload.Status = "success"
	h.broadcast("run", payload.RunID, payload.Summary, nil)
	return xhttp.SuccessResponse(c, payload)
}

func (h *DashboardHandler) Stream(c echo.Context) error {
	// the upgrader has already answered the client on failure
	if err := h.hub.Serve(c.Response(), c.Request()); err != nil {
		h.logger.Warn("stream upgrade failed", xlogger.Error(err))
	}
	return nil
}

// latest returns the rows of the newest snapshot and its file name.
// No snapshot yet yields no rows and no error.
func (h *DashboardHandler) latest(ctx context.Context) ([]models.ScoredRow, string, error) {
	path, err := repository.LatestSnapshot(h.dir)
	if errors.Is(err, repository.ErrNoSnapshot) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("locate snapshot: %w", err)
	}
	name := filepath.Base(path)

	// a new run writes a new file name, so the key never goes stale
	key := "snapshot:" + name
	if h.cache != nil {
		var rows []models.ScoredRow
		if err := h.cache.Get(ctx, key, &rows); err == nil {
			return rows, name, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("dashboard cache get error", xlogger.Error(err))
		}
	}

	rows, err := repository.ReadSnapshot(path)
	if err != nil {
		return nil, "", fmt.Errorf("read snapshot %s: %w", name, err)
	}
	if h.cache != nil {
		if err := h.cache.Set(ctx, key, rows, h.cacheTTL); err != nil {
			h.logger.Warn("dashboard cache set error", xlogger.Error(err))
		}
	}
	return rows, name, nil
}

func (h *DashboardHandler) broadcast(kind, runID string, summary *models.MarketSummary, err error) {
	if h.hub == nil {
		return
	}
	ev := StreamEvent{Type: kind, RunID: runID, At: time.Now().UTC()}
	if summary != nil {
		ev.Data = summary
	}
	if err != nil {
		ev.Error = err.Error()
	}
	h.hub.Broadcast(ev)
}

func refreshPayload(res *models.RunResult) *RefreshPayload {
	p := &RefreshPayload{Sources: []SourceStatus{}}
	if res == nil {
		return p
	}
	p.RunID = res.Context.RunID()
	p.Rows = len(res.Rows)
	if len(res.Rows) > 0 {
		p.Snapshot = filepath.Base(res.Context.SnapshotPath)
		summary := res.Summary
		p.Summary = &summary
	}
	for _, s := range res.Sources {
		st := SourceStatus{Source: s.Source, Posts: s.Posts, Rows: s.Rows}
		if s.Err != nil {
			st.Error = s.Err.Error()
		}
		p.Sources = append(p.Sources, st)
	}
	return p
}

// NormalizeTicker upper-cases t and ensures the leading "$".
func NormalizeTicker(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if !strings.HasPrefix(t, "$") {
		t = "$" + t
	}
	return t
}

func observe(endpoint string, start time.Time) {
	metrics.DashboardLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
