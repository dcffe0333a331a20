package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/devharvest"
)

// Compile-time interface verification.
var (
	_ devharvest.Summarizer   = (*LoggingSummarizer)(nil)
	_ devharvest.ReadmeLoader = (*LoggingReadmeLoader)(nil)
)

// LoggingSummarizer wraps a Summarizer with logging.
type LoggingSummarizer struct {
	next   devharvest.Summarizer
	logger *slog.Logger
}

// NewLoggingSummarizer creates a new LoggingSummarizer.
func NewLoggingSummarizer(next devharvest.Summarizer, logger *slog.Logger) *LoggingSummarizer {
	return &LoggingSummarizer{next: next, logger: logger}
}

// Summarize logs input and output sizes.
func (s *LoggingSummarizer) Summarize(ctx context.Context, readme string) (summary string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("summarize",
			"readme_runes", len([]rune(readme)),
			"summary_runes", len([]rune(summary)),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Summarize(ctx, readme)
}

// LoggingReadmeLoader wraps a ReadmeLoader with logging.
type LoggingReadmeLoader struct {
	next   devharvest.ReadmeLoader
	logger *slog.Logger
}

// NewLoggingReadmeLoader creates a new LoggingReadmeLoader.
func NewLoggingReadmeLoader(next devharvest.ReadmeLoader, logger *slog.Logger) *LoggingReadmeLoader {
	return &LoggingReadmeLoader{next: next, logger: logger}
}

// Load logs the repository and README size.
func (l *LoggingReadmeLoader) Load(ctx context.Context, githubURL string) (text string, err error) {
	defer func(begin time.Time) {
		l.logger.Info("load readme",
			"github", githubURL,
			"runes", len([]rune(text)),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Load(ctx, githubURL)
}
