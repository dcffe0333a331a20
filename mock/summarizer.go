package mock

import (
	"context"

	"github.com/fwojciec/devharvest"
)

// Compile-time interface verification.
var (
	_ devharvest.Summarizer   = (*Summarizer)(nil)
	_ devharvest.ReadmeLoader = (*ReadmeLoader)(nil)
)

// Summarizer is a mock implementation of devharvest.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, readme string) (string, error)
}

func (s *Summarizer) Summarize(ctx context.Context, readme string) (string, error) {
	return s.SummarizeFn(ctx, readme)
}

// ReadmeLoader is a mock implementation of devharvest.ReadmeLoader.
type ReadmeLoader struct {
	LoadFn func(ctx context.Context, githubURL string) (string, error)
}

func (l *ReadmeLoader) Load(ctx context.Context, githubURL string) (string, error) {
	return l.LoadFn(ctx, githubURL)
}
