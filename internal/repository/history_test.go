package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SentiPull/internal/domain/models"
	"SentiPull/pkg/cache"
)

var testRunTime = time.Date(2024, 5, 1, 12, 30, 15, 0, time.UTC)

func TestFileHistoryStoreMissingFile(t *testing.T) {
	s := NewFileHistoryStore(filepath.Join(t.TempDir(), "history_latest.json"))
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileHistoryStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history_latest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := NewFileHistoryStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileHistoryStoreSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	latest := filepath.Join(dir, "history_latest.json")
	s := NewFileHistoryStore(latest)
	rc := models.NewRunContext(testRunTime, dir)

	want := map[string]models.HistoryBaseline{
		"$TSLA": {Mean: 5, Std: 1.4142135623730951},
		"$GME":  {Mean: 3, Std: 0},
	}
	require.NoError(t, s.Save(context.Background(), rc, want))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// the run's own file carries the same content
	data, err := os.ReadFile(filepath.Join(dir, "history_20240501_123015.json"))
	require.NoError(t, err)
	var run map[string]models.HistoryBaseline
	require.NoError(t, json.Unmarshal(data, &run))
	assert.Equal(t, want, run)

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileHistoryStoreSaveReplaces(t *testing.T) {
	dir := t.TempDir()
	s := NewFileHistoryStore(filepath.Join(dir, "latest.json"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.RunContext{}, map[string]models.HistoryBaseline{"$OLD": {Mean: 1}}))
	require.NoError(t, s.Save(ctx, models.RunContext{}, map[string]models.HistoryBaseline{"$NEW": {Mean: 2}}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]models.HistoryBaseline{"$NEW": {Mean: 2}}, got)
}

func TestFileHistoryStoreSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := NewFileHistoryStore(filepath.Join(blocker, "latest.json"))
	err := s.Save(context.Background(), models.RunContext{}, map[string]models.HistoryBaseline{})
	var pe *models.PersistenceError
	require.ErrorAs(t, err, &pe)
}

func TestRedisHistoryStore(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	s := NewRedisHistoryStore(c, "")
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	want := map[string]models.HistoryBaseline{"$AAPL": {Mean: 4, Std: 2}}
	require.NoError(t, s.Save(ctx, models.NewRunContext(testRunTime, ""), want))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, c.Set(ctx, "history:latest", "garbage", 0))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
