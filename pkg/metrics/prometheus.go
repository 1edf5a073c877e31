package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"SentiPull/internal/domain/models"
)

const namespace = "sentipull"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	postsFetched *prometheus.CounterVec
	rowsEmitted  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	marketPct    *prometheus.GaugeVec
	marketAvg    prometheus.Gauge
	lastRun      prometheus.Gauge
}

// New creates a recorder registered with the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		postsFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "posts_fetched_total",
				Help:      "Total number of posts fetched per source",
			},
			[]string{"source"},
		),
		rowsEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_emitted_total",
				Help:      "Total number of scored ticker rows per source",
			},
			[]string{"source"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		marketPct: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "market_signal_percent",
				Help:      "Share of rows per signal in the last run",
			},
			[]string{"signal"},
		),
		marketAvg: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "market_average_sentiment",
				Help:      "Average sentiment across rows of the last run",
			},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_rows",
				Help:      "Number of rows produced by the last run",
			},
		),
	}
}

// RecordPostsFetched records posts obtained from a source.
func (r *Recorder) RecordPostsFetched(source string, n int) {
	r.postsFetched.WithLabelValues(source).Add(float64(n))
}

// RecordRows records scored rows emitted for a source.
func (r *Recorder) RecordRows(source string, n int) {
	r.rowsEmitted.WithLabelValues(source).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordMarket publishes the summary of the last run.
func (r *Recorder) RecordMarket(s models.MarketSummary) {
	r.marketPct.WithLabelValues(string(models.SignalLong)).Set(s.LongPct)
	r.marketPct.WithLabelValues(string(models.SignalShort)).Set(s.ShortPct)
	r.marketPct.WithLabelValues(string(models.SignalNeutral)).Set(s.NeutralPct)
	r.marketAvg.Set(s.AvgSentiment)
	r.lastRun.Set(float64(s.Total))
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordPostsFetched(string, int) {}
func (Noop) RecordRows(string, int) {}
func (Noop) RecordError(string) {}
func (Noop) RecordLatency(string, float64) {}
func (Noop) RecordMarket(models.MarketSummary) {}
