// Package cache keeps a serialized snapshot of the whole catalog in redis so
// public catalog queries avoid a Mongo scan per request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dalemusser/stratatools/internal/app/system/metrics"
	"github.com/dalemusser/stratatools/internal/domain/catalog"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key is the redis key holding the catalog snapshot.
const Key = "stratatools:catalog:v1"

// DefaultTTL bounds how stale a snapshot can get if an invalidation is missed.
const DefaultTTL = 5 * time.Minute

// Snapshot is a catalog.Source that reads through redis. With a nil client it
// passes every call straight to the wrapped source.
type Snapshot struct {
	rdb     redis.UniversalClient
	src     catalog.Source
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New wraps src. rdb may be nil to disable caching.
func New(rdb redis.UniversalClient, src catalog.Source, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Snapshot {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshot{rdb: rdb, src: src, ttl: ttl, logger: logger, metrics: m}
}

// Enabled reports whether a redis client is configured.
func (s *Snapshot) Enabled() bool {
	return s != nil && s.rdb != nil
}

// AllTools returns the cached catalog, loading and storing it on a miss.
// Redis failures are logged and the source is used directly.
func (s *Snapshot) AllTools(ctx context.Context) ([]models.Tool, error) {
	if !s.Enabled() {
		return s.src.AllTools(ctx)
	}

	raw, err := s.rdb.Get(ctx, Key).Bytes()
	switch {
	case err == nil:
		tools, derr := decode(raw)
		if derr == nil {
			s.metrics.ObserveCache("hit")
			return tools, nil
		}
		s.logger.Warn("discarding unreadable catalog snapshot", zap.Error(derr))
	case errors.Is(err, redis.Nil):
	default:
		s.metrics.ObserveCache("error")
		s.logger.Warn("catalog cache read failed", zap.Error(err))
		return s.src.AllTools(ctx)
	}

	s.metrics.ObserveCache("miss")
	tools, err := s.src.AllTools(ctx)
	if err != nil {
		return nil, err
	}
	if data, merr := json.Marshal(tools); merr == nil {
		if serr := s.rdb.Set(ctx, Key, data, s.ttl).Err(); serr != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(serr))
		}
	}
	return tools, nil
}

// Invalidate drops the snapshot. Call after every catalog mutation.
func (s *Snapshot) Invalidate(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Del(ctx, Key).Err()
}

// Ping checks the redis connection. It is a no-op when caching is disabled.
func (s *Snapshot) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}

func decode(raw []byte) ([]models.Tool, error) {
	tools := []models.Tool{}
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, err
	}
	// name_ci is not part of the JSON form.
	for i := range tools {
		tools[i].NameCI = text.Fold(tools[i].Name)
	}
	return tools, nil
}
