package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, []string{"stocks", "wallstreetbets", "investing"}, c.Reddit.Sources)
	assert.Equal(t, 100, c.Reddit.PostLimit)
	assert.Equal(t, 10*time.Second, c.Reddit.Timeout)
	assert.Equal(t, time.Second, c.Reddit.MinInterval)
	assert.Equal(t, "file", c.History.Backend)
	assert.Equal(t, 50, c.Dashboard.RowsLimit)
	assert.Equal(t, filepath.Join("data", "history_latest.json"), c.HistoryPath())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
environment: production
reddit:
  sources: [options]
  post_limit: 25
  min_interval: 2s
output:
  dir: /var/lib/sentipull
sinks:
  kafka:
    enabled: true
    brokers: ["kafka:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, []string{"options"}, c.Reddit.Sources)
	assert.Equal(t, 25, c.Reddit.PostLimit)
	assert.Equal(t, 2*time.Second, c.Reddit.MinInterval)
	assert.Equal(t, "https://www.reddit.com", c.Reddit.BaseURL)
	assert.Equal(t, "sentiment.rows", c.Sinks.Kafka.Topic)
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("SOURCES", "stocks, options")
	t.Setenv("OUTPUT_DIR", "/tmp/sentipull")
	t.Setenv("HISTORY_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("POST_LIMIT", "10")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := LoadWithEnv("")
	require.NoError(t, err)
	assert.Equal(t, []string{"stocks", "options"}, c.Reddit.Sources)
	assert.Equal(t, "/tmp/sentipull", c.Output.Dir)
	assert.Equal(t, "redis", c.History.Backend)
	assert.Equal(t, "redis:6379", c.History.Redis.Addr)
	assert.Equal(t, 10, c.Reddit.PostLimit)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cases := map[string]string{
		"bad backend":      "history:\n  backend: postgres\n",
		"kafka no brokers": "sinks:\n  kafka:\n    enabled: true\n",
		"s3 no bucket":     "sinks:\n  s3:\n    enabled: true\n",
		"post limit range": "reddit:\n  post_limit: 500\n",
		"empty sources":    "reddit:\n  sources: []\n",
		"bad provider":     "sentiment:\n  provider: bert\n",
		"remote no url":    "sentiment:\n  provider: remote\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reddit: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestShippedConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "file", c.History.Backend)
	assert.False(t, c.Sinks.Kafka.Enabled)
	assert.Equal(t, filepath.Join("data", "history_latest.json"), c.HistoryPath())
}
