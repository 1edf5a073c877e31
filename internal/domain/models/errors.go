package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when no source produced a single ticker mention.
	ErrNoData = errors.New("no tickers found")
	// ErrRunInProgress is returned when a run is requested while another is active.
	ErrRunInProgress = errors.New("run already in progress")
)

// FetchError is a failure to obtain posts from one source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError is a failure to write the snapshot or the history baseline.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
