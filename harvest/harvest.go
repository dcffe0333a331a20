// Package harvest provides the resumable scraping loops. It lists gallery
// projects, scrapes each project page with retries while checkpointing
// results after every item, and enriches results with README summaries.
package harvest

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/devharvest"
)

// Harvester scrapes project pages one at a time, checkpointing the full
// result set to Store after every item so a rerun resumes where it stopped.
type Harvester struct {
	Fetcher   devharvest.Fetcher
	Extractor devharvest.ProjectExtractor
	Store     devharvest.ProgressStore
	Logger    *slog.Logger

	// Policy governs attempts per item. Zero fields fall back to DefaultPolicy.
	Policy Policy

	// ItemDelay is the pause between items. Zero uses DefaultItemDelay;
	// a negative value disables the pause.
	ItemDelay time.Duration
}

// Pending returns the work items whose link is not present in prior,
// preserving list order. Repeated links within items are kept once.
func Pending(items []devharvest.WorkItem, prior []*devharvest.Result) []devharvest.WorkItem {
	done := make(map[string]struct{}, len(prior)+len(items))
	for _, r := range prior {
		done[r.Link] = struct{}{}
	}

	pending := make([]devharvest.WorkItem, 0, len(items))
	for _, item := range items {
		if _, ok := done[item.Link]; ok {
			continue
		}
		done[item.Link] = struct{}{}
		pending = append(pending, item)
	}
	return pending
}

// Run processes every item of items not yet in the store, in order.
//
// A failed item is recorded as a sentinel result and the run continues.
// Store write failures are logged and counted but never stop the run.
// Only a store that cannot be loaded, invalid input, or a canceled context
// end the run early; results saved before that remain in the store.
func (h *Harvester) Run(ctx context.Context, items []devharvest.WorkItem, progress ProgressFunc) (*Report, error) {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, devharvest.Errorf(devharvest.EINVALID, "work item %d: %s", i, devharvest.ErrorMessage(err))
		}
	}

	prior, err := h.Store.Load(ctx)
	if err != nil {
		return nil, devharvest.Errorf(devharvest.ESETUP, "loading progress: %w", err)
	}

	pending := Pending(items, prior)
	results := prior
	total := len(prior) + len(pending)
	report := &Report{Skipped: len(items) - len(pending)}
	logger := h.logger()

	progress.emit(ProgressEvent{Type: ProgressStarted, Completed: len(results), Total: total})

	if len(pending) == 0 {
		h.save(ctx, results, report)
		report.Total = len(results)
		progress.emit(ProgressEvent{Type: ProgressFinished, Completed: len(results), Total: total})
		return report, nil
	}

	delay := h.itemDelay()
	for i, item := range pending {
		if err := ctx.Err(); err != nil {
			report.Total = len(results)
			return report, err
		}

		progress.emit(ProgressEvent{
			Type:      ProgressItem,
			Completed: len(results),
			Total:     total,
			Name:      item.Name,
			URL:       item.Link,
		})

		result, err := h.scrape(ctx, item, func(attempt int, err error) {
			logger.Warn("attempt failed", "name", item.Name, "url", item.Link, "attempt", attempt, "err", err)
			progress.emit(ProgressEvent{
				Type:      ProgressRetry,
				Completed: len(results),
				Total:     total,
				Name:      item.Name,
				URL:       item.Link,
				Attempt:   attempt,
				Error:     err,
			})
		})
		if result == nil {
			report.Total = len(results)
			return report, err
		}

		results = append(results, result)
		report.Processed++
		h.save(ctx, results, report)

		event := ProgressEvent{
			Type:      ProgressCompleted,
			Completed: len(results),
			Total:     total,
			Name:      item.Name,
			URL:       item.Link,
		}
		if result.IsSentinel() {
			report.Failed++
			event.Type = ProgressFailed
			event.Error = devharvest.Errorf(devharvest.EFETCH, "giving up on %s: %w", item.Name, err)
		} else {
			report.Succeeded++
		}
		progress.emit(event)

		if i < len(pending)-1 {
			if err := sleep(ctx, delay); err != nil {
				report.Total = len(results)
				return report, err
			}
		}
	}

	report.Total = len(results)
	progress.emit(ProgressEvent{Type: ProgressFinished, Completed: len(results), Total: total})
	return report, nil
}

// scrape fetches and extracts a single item under the retry policy.
// Exhausted attempts yield a sentinel result together with the last attempt's
// error. Context cancellation yields a nil result and the context's error.
func (h *Harvester) scrape(ctx context.Context, item devharvest.WorkItem, onRetry RetryHook) (*devharvest.Result, error) {
	var details *devharvest.ProjectDetails
	err := Retry(ctx, h.Policy.withDefaults(), func(ctx context.Context) error {
		html, err := h.Fetcher.Fetch(ctx, item.Link)
		if err != nil {
			return devharvest.Errorf(devharvest.EFETCH, "fetching %s: %w", item.Link, err)
		}
		d, err := h.Extractor.Extract(html, item.Link)
		if err != nil {
			return err
		}
		details = d
		return nil
	}, onRetry)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		h.logger().Warn("giving up", "name", item.Name, "url", item.Link, "err", err)
		return devharvest.NewSentinel(item), err
	}

	return devharvest.NewResult(item, details), nil
}

func (h *Harvester) save(ctx context.Context, results []*devharvest.Result, report *Report) {
	if err := h.Store.Save(ctx, results); err != nil {
		report.PersistErrors++
		h.logger().Error("saving progress", "count", len(results), "err", err)
	}
}

func (h *Harvester) itemDelay() time.Duration {
	if h.ItemDelay == 0 {
		return DefaultItemDelay
	}
	return h.ItemDelay
}

func (h *Harvester) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.Logger
}
