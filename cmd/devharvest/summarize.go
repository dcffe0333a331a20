package main

import (
	"fmt"

	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/fs"
	"github.com/fwojciec/devharvest/harvest"
)

// Run executes the summarize command. An existing output file is resumed,
// so results enriched by an earlier run are not summarized again.
func (c *SummarizeCmd) Run(deps *Dependencies) error {
	lock, err := fs.AcquireLock(c.Out)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
		return err
	}
	defer lock.Release()

	results, err := deps.Enricher.Store.Load(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
		return err
	}
	if len(results) == 0 {
		results, err = fs.ReadResults(c.In)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
			return err
		}
	}

	report, runErr := deps.Enricher.Run(deps.Ctx, results, func(event harvest.ProgressEvent) {
		switch event.Type {
		case harvest.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  %d projects need a summary\n", event.Total)
		case harvest.ProgressItem:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed+1, event.Total, event.Name)
		case harvest.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.Name, devharvest.ErrorMessage(event.Error))
		}
	})
	if report != nil {
		printReport(deps.Stdout, "Summarized", report)
	}
	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(runErr))
		return runErr
	}
	return nil
}
