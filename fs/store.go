package fs

import (
	"context"

	"github.com/fwojciec/devharvest"
)

// Ensure ProgressStore implements devharvest.ProgressStore at compile time.
var _ devharvest.ProgressStore = (*ProgressStore)(nil)

// ProgressStore keeps the full result set in one JSON array file.
// Every Save rewrites the whole file atomically.
type ProgressStore struct {
	path string
}

// NewProgressStore creates a ProgressStore backed by the file at path.
func NewProgressStore(path string) *ProgressStore {
	return &ProgressStore{path: path}
}

// Path returns the backing file path.
func (s *ProgressStore) Path() string {
	return s.path
}

// Load returns the stored results in file order. A missing or empty file
// yields no results.
func (s *ProgressStore) Load(ctx context.Context) ([]*devharvest.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []*devharvest.Result
	if _, err := readJSON(s.path, &results); err != nil {
		return nil, err
	}

	out := make([]*devharvest.Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// Save replaces the file contents with results.
func (s *ProgressStore) Save(ctx context.Context, results []*devharvest.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if results == nil {
		results = []*devharvest.Result{}
	}
	return writeJSON(s.path, results)
}
