package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"SentiPull/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"console"`
		Output     string `yaml:"output" default:"stdout"`
		MaxSizeMB  int    `yaml:"max_size_mb" default:"100"`
		MaxAgeDays int    `yaml:"max_age_days" default:"7"`
		Compress   bool   `yaml:"compress" default:"true"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"2m"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Reddit struct {
		BaseURL     string        `yaml:"base_url" default:"https://www.reddit.com"`
		UserAgent   string        `yaml:"user_agent" default:"sentipull/1.0"`
		Sources     []string      `yaml:"sources" default:"[\"stocks\",\"wallstreetbets\",\"investing\"]"`
		PostLimit   int           `yaml:"post_limit" default:"100"`
		Timeout     time.Duration `yaml:"timeout" default:"10s"`
		MinInterval time.Duration `yaml:"min_interval" default:"1s"`
	} `yaml:"reddit"`
	Sentiment struct {
		Provider string        `yaml:"provider" default:"lexicon"`
		URL      string        `yaml:"url"`
		Timeout  time.Duration `yaml:"timeout" default:"3s"`
		Attempts int           `yaml:"attempts" default:"3"`
	} `yaml:"sentiment"`
	Output struct {
		Dir         string `yaml:"dir" default:"data"`
		HistoryFile string `yaml:"history_file" default:"history_latest.json"`
	} `yaml:"output"`
	History struct {
		Backend string `yaml:"backend" default:"file"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"sentipull"`
			Key      string `yaml:"key" default:"history:latest"`
		} `yaml:"redis"`
	} `yaml:"history"`
	Sinks struct {
		ClickHouse struct {
			Enabled          bool          `yaml:"enabled"`
			Host             string        `yaml:"host" default:"localhost"`
			Port             int           `yaml:"port" default:"9000"`
			Database         string        `yaml:"database" default:"default"`
			User             string        `yaml:"user" default:"default"`
			Password         string        `yaml:"password"`
			Table            string        `yaml:"table" default:"sentiment_rows"`
			UseHTTP          bool          `yaml:"use_http"`
			AsyncInsert      bool          `yaml:"async_insert"`
			WaitForAsync     bool          `yaml:"wait_for_async_insert"`
			DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
			WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time"`
			InitSchema       bool          `yaml:"init_schema" default:"true"`
		} `yaml:"clickhouse"`
		Kafka struct {
			Enabled      bool          `yaml:"enabled"`
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"sentiment.rows"`
			SummaryTopic string        `yaml:"summary_topic" default:"sentiment.summary"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			AutoCreate   bool          `yaml:"auto_create_topic"`
		} `yaml:"kafka"`
		S3 struct {
			Enabled         bool   `yaml:"enabled"`
			Bucket          string `yaml:"bucket"`
			Prefix          string `yaml:"prefix" default:"snapshots"`
			Region          string `yaml:"region" default:"us-east-1"`
			Endpoint        string `yaml:"endpoint"`
			PathStyle       bool   `yaml:"path_style"`
			AccessKeyID     string `yaml:"access_key_id"`
			SecretAccessKey string `yaml:"secret_access_key"`
		} `yaml:"s3"`
	} `yaml:"sinks"`
	Dashboard struct {
		RowsLimit    int           `yaml:"rows_limit" default:"50"`
		RefreshEvery time.Duration `yaml:"refresh_every" default:"30s"`
		RefreshBurst int           `yaml:"refresh_burst" default:"1"`
		CacheTTL     time.Duration `yaml:"cache_ttl" default:"1m"`
	} `yaml:"dashboard"`
}

// Load reads and parses a YAML configuration file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SOURCES"); v != "" {
		c.Reddit.Sources = util.SplitList(v)
	}
	if v := os.Getenv("POST_LIMIT"); v != "" {
		c.Reddit.PostLimit = util.ParseIntDefault(v, c.Reddit.PostLimit)
	}
	if v := os.Getenv("REDDIT_USER_AGENT"); v != "" {
		c.Reddit.UserAgent = v
	}
	if v := os.Getenv("SENTIMENT_URL"); v != "" {
		c.Sentiment.Provider = "remote"
		c.Sentiment.URL = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("HISTORY_BACKEND"); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.History.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Sinks.Kafka.Brokers = util.SplitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Sinks.Kafka.Topic = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		c.Sinks.S3.Bucket = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Reddit.Sources) == 0 {
		return fmt.Errorf("reddit.sources cannot be empty")
	}
	if c.Reddit.PostLimit < 1 || c.Reddit.PostLimit > 100 {
		return fmt.Errorf("reddit.post_limit must be within 1..100, got %d", c.Reddit.PostLimit)
	}
	if c.Sentiment.Provider != "lexicon" && c.Sentiment.Provider != "remote" {
		return fmt.Errorf("sentiment.provider must be 'lexicon' or 'remote', got '%s'", c.Sentiment.Provider)
	}
	if c.Sentiment.Provider == "remote" && c.Sentiment.URL == "" {
		return fmt.Errorf("sentiment.url is required for the remote provider")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.History.Backend != "file" && c.History.Backend != "redis" {
		return fmt.Errorf("history.backend must be 'file' or 'redis', got '%s'", c.History.Backend)
	}
	if c.Sinks.Kafka.Enabled && len(c.Sinks.Kafka.Brokers) == 0 {
		return fmt.Errorf("sinks.kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Sinks.S3.Enabled && c.Sinks.S3.Bucket == "" {
		return fmt.Errorf("sinks.s3.bucket is required when s3 is enabled")
	}
	if c.Dashboard.RowsLimit < 1 {
		return fmt.Errorf("dashboard.rows_limit must be positive")
	}
	return nil
}

// HistoryPath is the stable location the file history store reads from.
func (c *Config) HistoryPath() string {
	if strings.ContainsRune(c.Output.HistoryFile, os.PathSeparator) {
		return c.Output.HistoryFile
	}
	return c.Output.Dir + string(os.PathSeparator) + c.Output.HistoryFile
}
