package repository

import (
	"context"
	"errors"

	"SentiPull/internal/domain/models"
	"SentiPull/pkg/cache"
	applogger "SentiPull/pkg/logger"
)

// RedisHistoryStore keeps the whole baseline under a single key, replaced with one SET.
type RedisHistoryStore struct {
	c   cache.Service
	key string
	l   *applogger.Logger
}

func NewRedisHistoryStore(c cache.Service, key string) *RedisHistoryStore {
	if key == "" {
		key = "history:latest"
	}
	return &RedisHistoryStore{c: c, key: key, l: applogger.NewNop()}
}

// SetLogger injects a structured logger.
func (s *RedisHistoryStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *RedisHistoryStore) Load(ctx context.Context) (map[string]models.HistoryBaseline, error) {
	out := map[string]models.HistoryBaseline{}
	if err := s.c.Get(ctx, s.key, &out); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.l.Warn("history unavailable in redis, starting without baseline",
				applogger.String("key", s.key),
				applogger.Error(err),
			)
		}
		return map[string]models.HistoryBaseline{}, nil
	}
	return out, nil
}

func (s *RedisHistoryStore) Save(ctx context.Context, rc models.RunContext, baselines map[string]models.HistoryBaseline) error {
	if err := s.c.Set(ctx, s.key, baselines, 0); err != nil {
		return &models.PersistenceError{Op: "save history", Path: "redis:" + s.key, Err: err}
	}
	return nil
}
