package di

import (
	"context"
	"fmt"
	"time"

	"SentiPull/internal/domain/repository"
	domsvc "SentiPull/internal/domain/service"
	"SentiPull/internal/handler/api"
	internalrepo "SentiPull/internal/repository"
	"SentiPull/internal/service/ratelimit"
	"SentiPull/internal/service/reddit"
	"SentiPull/internal/services/sentiment"
	"SentiPull/internal/usecase"
	"SentiPull/pkg/cache"
	pkgch "SentiPull/pkg/clickhouse"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	pkgkafka "SentiPull/pkg/kafka"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/metrics"
	"SentiPull/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePostSource creates the reddit listing client.
func ProvidePostSource(cfg *config.Config) repository.PostSource {
	return reddit.New(reddit.Config{
		BaseURL:   cfg.Reddit.BaseURL,
		UserAgent: cfg.Reddit.UserAgent,
		Limit:     cfg.Reddit.PostLimit,
		Timeout:   cfg.Reddit.Timeout,
	})
}

// ProvideSentiment creates the configured sentiment scorer.
func ProvideSentiment(cfg *config.Config) (domsvc.SentimentProvider, error) {
	if cfg.Sentiment.Provider != "remote" {
		return sentiment.NewAnalyzer(), nil
	}
	s, err := sentiment.NewRemoteScorer(sentiment.RemoteConfig{
		URL:      cfg.Sentiment.URL,
		Timeout:  cfg.Sentiment.Timeout,
		Attempts: cfg.Sentiment.Attempts,
	})
	if err != nil {
		return nil, fmt.Errorf("sentiment: %w", err)
	}
	return s, nil
}

// ProvideAggregator creates the per-source aggregator.
func ProvideAggregator(sp domsvc.SentimentProvider, m repository.Metrics, l *applogger.Logger) *usecase.Aggregator {
	return usecase.NewAggregator(sp, m, l)
}

// ProvideRedisCache connects to Redis when it backs the history store; nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if cfg.History.Backend != "redis" {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.History.Redis.Addr),
		cache.WithRedisPassword(cfg.History.Redis.Password),
		cache.WithRedisDB(cfg.History.Redis.DB),
		cache.WithRedisPrefix(cfg.History.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis history: %w", err)
	}
	return rc, nil
}

// ProvideHistoryStore selects the history backend.
func ProvideHistoryStore(cfg *config.Config, rc *cache.RedisCache, l *applogger.Logger) repository.HistoryStore {
	if rc != nil {
		s := internalrepo.NewRedisHistoryStore(rc, cfg.History.Redis.Key)
		s.SetLogger(l)
		return s
	}
	s := internalrepo.NewFileHistoryStore(cfg.HistoryPath())
	s.SetLogger(l)
	return s
}

// ProvideSnapshotWriter creates the CSV snapshot writer.
func ProvideSnapshotWriter() repository.SnapshotWriter {
	return internalrepo.NewCSVSnapshotWriter()
}

// ProvideClickHouseClient creates a ClickHouse client when the sink is enabled; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	chc := cfg.Sinks.ClickHouse
	if !chc.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(chc.Host),
		pkgch.WithPort(chc.Port),
		pkgch.WithDatabase(chc.Database),
		pkgch.WithCredentials(chc.User, chc.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(chc.UseHTTP),
		pkgch.WithAsyncInsert(chc.AsyncInsert, chc.WaitForAsync),
		pkgch.WithTimeouts(chc.DialTimeout, chc.ReadTimeout, chc.WriteTimeout),
		pkgch.WithMaxExecutionTime(chc.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSinks builds the enabled row sinks in a fixed order: clickhouse, kafka, s3.
func ProvideSinks(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) ([]repository.RowSink, error) {
	var sinks []repository.RowSink

	if ch != nil {
		sink := internalrepo.NewClickHouseSink(ch, cfg.Sinks.ClickHouse.Table)
		sink.SetLogger(l)
		if cfg.Sinks.ClickHouse.InitSchema {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			stmts := append([]string{ch.CreateDatabaseStatement()}, sink.SchemaStatements()...)
			if err := ch.InitSchema(ctx, stmts); err != nil {
				return nil, fmt.Errorf("clickhouse schema: %w", err)
			}
		}
		sinks = append(sinks, sink)
	}

	if kc := cfg.Sinks.Kafka; kc.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(kc.Brokers),
			pkgkafka.WithCompression(kc.Compression),
			pkgkafka.WithRequiredAcks(kc.RequiredAcks),
			pkgkafka.WithMaxAttempts(kc.MaxAttempts),
			pkgkafka.WithTimeouts(kc.WriteTimeout, kc.WriteTimeout),
			pkgkafka.WithHashByKey(true),
			pkgkafka.WithAutoCreateTopic(kc.AutoCreate),
		)
		if err != nil {
			closeSinks(sinks)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, internalrepo.NewKafkaSink(producer, kc.Topic, kc.SummaryTopic))
	}

	if sc := cfg.Sinks.S3; sc.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sink, err := internalrepo.NewS3Sink(ctx, internalrepo.S3Config{
			Bucket:          sc.Bucket,
			Prefix:          sc.Prefix,
			Region:          sc.Region,
			Endpoint:        sc.Endpoint,
			PathStyle:       sc.PathStyle,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
		})
		if err != nil {
			closeSinks(sinks)
			return nil, fmt.Errorf("s3 sink: %w", err)
		}
		sink.SetLogger(l)
		sinks = append(sinks, sink)
	}

	return sinks, nil
}

func closeSinks(sinks []repository.RowSink) {
	for _, s := range sinks {
		_ = s.Close()
	}
}

// ProvideFetchLimiter spaces fetch attempts across sources.
func ProvideFetchLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Reddit.MinInterval, 1)
}

// ProvidePipeline creates the batch pipeline.
func ProvidePipeline(
	cfg *config.Config,
	source repository.PostSource,
	agg *usecase.Aggregator,
	history repository.HistoryStore,
	snapshot repository.SnapshotWriter,
	sinks []repository.RowSink,
	limiter *ratelimit.Limiter,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(
		usecase.PipelineConfig{
			Sources:      cfg.Reddit.Sources,
			OutputDir:    cfg.Output.Dir,
			FetchTimeout: cfg.Reddit.Timeout,
		},
		source, agg, history, snapshot,
		usecase.WithSinks(sinks...),
		usecase.WithLimiter(limiter),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	)
}

// ProvideHub creates the websocket hub for run events.
func ProvideHub(l *applogger.Logger) *api.Hub {
	return api.NewHub(l)
}

// ProvideSnapshotCache creates the in-process cache of parsed snapshots.
func ProvideSnapshotCache() *cache.MemoryCache {
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(16))
}

// ProvideDashboardHandler creates the dashboard API handler.
func ProvideDashboardHandler(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	hub *api.Hub,
	mc *cache.MemoryCache,
) *api.DashboardHandler {
	return api.NewDashboardHandler(l, cfg.Output.Dir, pipeline,
		api.WithCache(mc, cfg.Dashboard.CacheTTL),
		api.WithRefreshLimiter(ratelimit.New(cfg.Dashboard.RefreshEvery, cfg.Dashboard.RefreshBurst)),
		api.WithRowsLimit(cfg.Dashboard.RowsLimit),
		api.WithHub(hub),
	)
}

// ProvideHTTPServer creates the dashboard HTTP server.
func ProvideHTTPServer(cfg *config.Config, h *api.DashboardHandler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	httpServer *xhttp.Server,
	hub *api.Hub,
	ch *pkgch.Client,
	mc *cache.MemoryCache,
	rc *cache.RedisCache,
) *server.App {
	app := server.New(cfg, l, pipeline, httpServer, hub, ch)
	app.OnClose(mc.Close)
	if rc != nil {
		app.OnClose(rc.Close)
	}
	return app
}
