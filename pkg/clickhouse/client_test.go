package clickhouse

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSNNative(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host: "ch", Port: 9000, Database: "sentipull", User: "svc", Password: "p@ss/word",
		DialTimeout: 5 * time.Second, ReadTimeout: 10 * time.Second,
		AsyncInsert: true, WaitForAsync: true, MaxExecTime: time.Minute,
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch:9000", u.Host)
	assert.Equal(t, "/sentipull", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss/word", pw)

	q := u.Query()
	assert.Equal(t, "5s", q.Get("dial_timeout"))
	assert.Equal(t, "10s", q.Get("read_timeout"))
	assert.Equal(t, "60", q.Get("max_execution_time"))
	assert.Equal(t, "1", q.Get("async_insert"))
	assert.Equal(t, "1", q.Get("wait_for_async_insert"))
	assert.Empty(t, q.Get("write_timeout"))
}

func TestBuildDSNHTTPWithoutCredentials(t *testing.T) {
	dsn := buildDSN(ClientConfig{Host: "localhost", Port: 8123, Database: "default", UseHTTP: true})
	assert.Equal(t, "http://localhost:8123/default", dsn)
}

func TestOptionsKeepDefaultsOnZero(t *testing.T) {
	cfg := &ClientConfig{Port: 9000, Database: "default", DialTimeout: time.Second}
	for _, opt := range []ClientOption{WithPort(0), WithDatabase(""), WithTimeouts(0, 2*time.Second, 0)} {
		opt(cfg)
	}
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "default", cfg.Database)
	assert.Equal(t, time.Second, cfg.DialTimeout)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	require.Error(t, err)
}
