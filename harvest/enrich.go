package harvest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/devharvest"
)

// Enricher fills in missing about texts by summarizing each project's
// GitHub README. The full result set is written to Store after every
// candidate.
type Enricher struct {
	Readmes    devharvest.ReadmeLoader
	Summarizer devharvest.Summarizer
	Store      devharvest.ProgressStore
	Logger     *slog.Logger
}

// Candidates returns the indexes of results that lack an about text but
// link a GitHub repository.
func Candidates(results []*devharvest.Result) []int {
	var idx []int
	for i, r := range results {
		if r.About == nil && r.GitHub != nil && *r.GitHub != "" {
			idx = append(idx, i)
		}
	}
	return idx
}

// Run enriches candidates in place, in order. A README or summarizer
// failure is recorded on the result and the run continues. Without
// candidates the results are saved once unchanged. Repositories
// with identical README text share one summary.
func (e *Enricher) Run(ctx context.Context, results []*devharvest.Result, progress ProgressFunc) (*Report, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	candidates := Candidates(results)
	total := len(candidates)
	report := &Report{
		Total:   len(results),
		Skipped: len(results) - total,
	}
	summaries := make(map[uint64]string)

	progress.emit(ProgressEvent{Type: ProgressStarted, Total: total})

	// The output is written even when nothing needs a summary.
	if total == 0 {
		if err := e.Store.Save(ctx, results); err != nil {
			report.PersistErrors++
			logger.Error("saving progress", "count", len(results), "err", err)
		}
	}

	for n, idx := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		r := results[idx]
		progress.emit(ProgressEvent{
			Type:      ProgressItem,
			Completed: n,
			Total:     total,
			Name:      r.Name,
			URL:       *r.GitHub,
		})

		err := e.enrich(ctx, r, summaries)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		report.Processed++

		event := ProgressEvent{
			Type:      ProgressCompleted,
			Completed: n + 1,
			Total:     total,
			Name:      r.Name,
			URL:       *r.GitHub,
		}
		if err != nil {
			report.Failed++
			event.Type = ProgressFailed
			event.Error = err
			logger.Warn("enrichment failed", "name", r.Name, "github", *r.GitHub, "stage", r.Failure, "err", err)
		} else {
			report.Succeeded++
		}

		if err := e.Store.Save(ctx, results); err != nil {
			report.PersistErrors++
			logger.Error("saving progress", "count", len(results), "err", err)
		}

		progress.emit(event)
	}

	progress.emit(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	return report, nil
}

func (e *Enricher) enrich(ctx context.Context, r *devharvest.Result, summaries map[uint64]string) error {
	readme, err := e.Readmes.Load(ctx, *r.GitHub)
	if err != nil {
		r.Failure = devharvest.FailureReadme
		return err
	}

	key := xxhash.Sum64String(readme)
	summary, ok := summaries[key]
	if !ok {
		summary, err = e.Summarizer.Summarize(ctx, readme)
		if err != nil {
			r.Failure = devharvest.FailureSummarize
			return err
		}
		summary = strings.TrimSpace(summary)
		if summary == "" {
			r.Failure = devharvest.FailureSummarize
			return devharvest.Errorf(devharvest.EEMPTY, "empty summary for %s", r.Name)
		}
		summaries[key] = summary
	}

	r.About = &summary
	r.Failure = ""
	return nil
}
