package models

import (
	"path/filepath"
	"time"
)

const (
	runStampLayout       = "20060102_150405"
	SnapshotFilePrefix   = "sentiment_snapshot_"
	SnapshotFileSuffix   = ".csv"
	historyFilePrefix    = "history_"
	historyFileExtension = ".json"
)

// RunContext carries the timestamp and output paths of one run.
type RunContext struct {
	Now          time.Time
	SnapshotPath string
	HistoryPath  string
}

// NewRunContext derives the run's output paths from now and the output directory.
func NewRunContext(now time.Time, dir string) RunContext {
	now = now.UTC()
	stamp := now.Format(runStampLayout)
	return RunContext{
		Now:          now,
		SnapshotPath: filepath.Join(dir, SnapshotFilePrefix+stamp+SnapshotFileSuffix),
		HistoryPath:  filepath.Join(dir, historyFilePrefix+stamp+historyFileExtension),
	}
}

// RunID identifies the run in sinks and stream events.
func (rc RunContext) RunID() string {
	return rc.Now.UTC().Format("20060102T150405Z")
}

// SourceResult reports what one source contributed to a run.
type SourceResult struct {
	Source string
	Posts  int
	Rows   int
	Err    error
}

// RunResult is the outcome of a complete pipeline run.
type RunResult struct {
	Context RunContext
	Rows    []ScoredRow
	Summary MarketSummary
	Sources []SourceResult
}
