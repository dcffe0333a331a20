package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/fs"
	"github.com/fwojciec/devharvest/harvest"
	"github.com/schollz/progressbar/v3"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	lock, err := fs.AcquireLock(c.Out)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
		return err
	}
	defer lock.Release()

	items, err := fs.ReadWorkItems(c.In)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
		return err
	}

	var bar *progressbar.ProgressBar
	if !c.NoProgress {
		bar = newProgressBar(deps.Stderr, "scraping")
	}

	report, runErr := deps.Harvester.Run(deps.Ctx, items, func(event harvest.ProgressEvent) {
		switch event.Type {
		case harvest.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  %d of %d projects already scraped\n", event.Completed, event.Total)
			if bar != nil {
				bar.ChangeMax(event.Total)
				_ = bar.Set(event.Completed)
			}
		case harvest.ProgressItem:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed+1, event.Total, event.Name)
		case harvest.ProgressRetry:
			fmt.Fprintf(deps.Stderr, "  retry %s (attempt %d): %v\n", harvest.TruncateURL(event.URL, 60), event.Attempt, event.Error)
		case harvest.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.Name, devharvest.ErrorMessage(event.Error))
			setBar(bar, event.Completed)
		case harvest.ProgressCompleted:
			setBar(bar, event.Completed)
		case harvest.ProgressFinished:
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(deps.Stderr)
			}
		}
	})
	if report != nil {
		printReport(deps.Stdout, "Scraped", report)
	}
	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(runErr))
		return runErr
	}

	if deps.Export != nil {
		results, err := deps.Harvester.Store.Load(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
			return err
		}
		if err := deps.Export.Save(deps.Ctx, results); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "  Exported %d results to %s\n", len(results), c.Out)
	}

	return nil
}

func newProgressBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func setBar(bar *progressbar.ProgressBar, n int) {
	if bar != nil {
		_ = bar.Set(n)
	}
}

func printReport(w io.Writer, verb string, r *harvest.Report) {
	fmt.Fprintf(w, "%s %d projects (%d ok, %d failed, %d skipped), %d results stored\n",
		verb, r.Processed, r.Succeeded, r.Failed, r.Skipped, r.Total)
	if r.PersistErrors > 0 {
		fmt.Fprintf(w, "  warning: %d checkpoint writes failed\n", r.PersistErrors)
	}
}
