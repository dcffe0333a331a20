package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/devharvest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ devharvest.ProgressStore = (*ProgressStore)(nil)

// ProgressStore implements devharvest.ProgressStore using SQLite. Each Save
// replaces the result set in a single transaction and records the save.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new ProgressStore.
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// Load returns the stored results in position order.
func (s *ProgressStore) Load(ctx context.Context) ([]*devharvest.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, link, about, github, tools, failure
		FROM results
		ORDER BY position
	`)
	if err != nil {
		return nil, devharvest.Errorf(devharvest.EPERSIST, "loading results: %v", err)
	}
	defer rows.Close()

	results := []*devharvest.Result{}
	for rows.Next() {
		var r devharvest.Result
		var about, github, tools sql.NullString
		if err := rows.Scan(&r.Name, &r.Link, &about, &github, &tools, &r.Failure); err != nil {
			return nil, devharvest.Errorf(devharvest.EPERSIST, "scanning result: %v", err)
		}
		r.About = stringPtr(about)
		r.GitHub = stringPtr(github)
		if r.Tools, err = decodeTools(tools); err != nil {
			return nil, devharvest.Errorf(devharvest.EINVALID, "decoding tools of %s: %v", r.Link, err)
		}
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, devharvest.Errorf(devharvest.EPERSIST, "loading results: %v", err)
	}
	return results, nil
}

// Save replaces all stored results with results.
func (s *ProgressStore) Save(ctx context.Context, results []*devharvest.Result) (err error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "beginning save: %v", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "clearing results: %v", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (position, name, link, about, github, tools, failure)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "preparing insert: %v", err)
	}
	defer stmt.Close()

	for i, r := range results {
		tools, encErr := encodeTools(r.Tools)
		if encErr != nil {
			err = devharvest.Errorf(devharvest.EINTERNAL, "encoding tools of %s: %v", r.Link, encErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, i, r.Name, r.Link, nullString(r.About), nullString(r.GitHub), tools, r.Failure); err != nil {
			return devharvest.Errorf(devharvest.EPERSIST, "inserting %s: %v", r.Link, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO saves (id, result_count, saved_at) VALUES (?, ?, ?)
	`, uuid.New().String(), len(results), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "recording save: %v", err)
	}

	if err = tx.Commit(); err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "committing save: %v", err)
	}
	return nil
}

// SaveInfo describes one recorded Save.
type SaveInfo struct {
	ID          string
	ResultCount int
	SavedAt     time.Time
}

// LastSave returns the most recent save. Returns ENOTFOUND if nothing was saved yet.
func (s *ProgressStore) LastSave(ctx context.Context) (*SaveInfo, error) {
	var info SaveInfo
	var savedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, result_count, saved_at
		FROM saves
		ORDER BY saved_at DESC, rowid DESC
		LIMIT 1
	`).Scan(&info.ID, &info.ResultCount, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, devharvest.Errorf(devharvest.ENOTFOUND, "no saves recorded")
	}
	if err != nil {
		return nil, devharvest.Errorf(devharvest.EPERSIST, "reading last save: %v", err)
	}

	if info.SavedAt, err = parseRFC3339(savedAt, "saved_at"); err != nil {
		return nil, err
	}
	return &info, nil
}
