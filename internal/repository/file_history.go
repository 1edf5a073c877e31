package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"SentiPull/internal/domain/models"
	applogger "SentiPull/pkg/logger"
)

// FileHistoryStore keeps the baseline as a JSON object on disk.
// Load reads the stable latest path; Save writes the run's own history file and
// then replaces the latest path, both atomically.
type FileHistoryStore struct {
	latestPath string
	l          *applogger.Logger
}

func NewFileHistoryStore(latestPath string) *FileHistoryStore {
	return &FileHistoryStore{latestPath: latestPath, l: applogger.NewNop()}
}

// SetLogger injects a structured logger.
func (s *FileHistoryStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *FileHistoryStore) Load(ctx context.Context) (map[string]models.HistoryBaseline, error) {
	out := map[string]models.HistoryBaseline{}
	data, err := os.ReadFile(s.latestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		s.l.Warn("history unreadable, starting without baseline",
			applogger.String("path", s.latestPath),
			applogger.Error(err),
		)
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		s.l.Warn("history corrupt, starting without baseline",
			applogger.String("path", s.latestPath),
			applogger.Error(err),
		)
		return map[string]models.HistoryBaseline{}, nil
	}
	return out, nil
}

func (s *FileHistoryStore) Save(ctx context.Context, rc models.RunContext, baselines map[string]models.HistoryBaseline) error {
	data, err := json.MarshalIndent(baselines, "", "  ")
	if err != nil {
		return &models.PersistenceError{Op: "encode history", Err: err}
	}
	write := func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}

	if rc.HistoryPath != "" && rc.HistoryPath != s.latestPath {
		if err := writeFileAtomic(rc.HistoryPath, write); err != nil {
			return &models.PersistenceError{Op: "save history", Path: rc.HistoryPath, Err: err}
		}
	}
	if err := writeFileAtomic(s.latestPath, write); err != nil {
		return &models.PersistenceError{Op: "save history", Path: s.latestPath, Err: fmt.Errorf("latest: %w", err)}
	}
	return nil
}
