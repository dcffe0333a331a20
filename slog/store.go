package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/devharvest"
)

// Ensure LoggingStore implements devharvest.ProgressStore.
var _ devharvest.ProgressStore = (*LoggingStore)(nil)

// LoggingStore wraps a ProgressStore with debug logging of every checkpoint.
type LoggingStore struct {
	next   devharvest.ProgressStore
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next devharvest.ProgressStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Load logs the number of results loaded.
func (s *LoggingStore) Load(ctx context.Context) (results []*devharvest.Result, err error) {
	defer func(begin time.Time) {
		s.logger.Info("load progress",
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx)
}

// Save logs each checkpoint at debug level.
func (s *LoggingStore) Save(ctx context.Context, results []*devharvest.Result) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save progress",
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, results)
}
