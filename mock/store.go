package mock

import (
	"context"

	"github.com/fwojciec/devharvest"
)

var _ devharvest.ProgressStore = (*ProgressStore)(nil)

// ProgressStore is a mock implementation of devharvest.ProgressStore.
type ProgressStore struct {
	LoadFn func(ctx context.Context) ([]*devharvest.Result, error)
	SaveFn func(ctx context.Context, results []*devharvest.Result) error
}

func (s *ProgressStore) Load(ctx context.Context) ([]*devharvest.Result, error) {
	return s.LoadFn(ctx)
}

func (s *ProgressStore) Save(ctx context.Context, results []*devharvest.Result) error {
	return s.SaveFn(ctx, results)
}

// MemoryStore is an in-memory devharvest.ProgressStore that records every
// snapshot passed to Save. Snapshots are deep copies, so later mutation of
// the saved slice does not alter history.
type MemoryStore struct {
	Results   []*devharvest.Result
	Snapshots [][]*devharvest.Result

	// SaveErr, when set, is returned by Save instead of storing.
	SaveErr func(results []*devharvest.Result) error
}

var _ devharvest.ProgressStore = (*MemoryStore)(nil)

func (s *MemoryStore) Load(_ context.Context) ([]*devharvest.Result, error) {
	return copyResults(s.Results), nil
}

func (s *MemoryStore) Save(_ context.Context, results []*devharvest.Result) error {
	if s.SaveErr != nil {
		if err := s.SaveErr(results); err != nil {
			return err
		}
	}
	s.Results = copyResults(results)
	s.Snapshots = append(s.Snapshots, copyResults(results))
	return nil
}

func copyResults(results []*devharvest.Result) []*devharvest.Result {
	out := make([]*devharvest.Result, len(results))
	for i, r := range results {
		c := *r
		if r.Tools != nil {
			c.Tools = append([]string{}, r.Tools...)
		}
		out[i] = &c
	}
	return out
}
