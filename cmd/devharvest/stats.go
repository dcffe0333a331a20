package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/fs"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	results, err := fs.ReadResults(c.In)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
		return err
	}

	cov := devharvest.MeasureCoverage(results)
	fmt.Fprintln(deps.Stdout, renderCoverage(cov))
	fmt.Fprintf(deps.Stdout, "missing description ratio: %.3f\n", cov.MissingRatio())

	if c.NoWrite {
		return nil
	}

	filled := devharvest.Summarized(results)
	if err := fs.WriteResults(c.Out, filled); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d results with descriptions to %s\n", len(filled), c.Out)
	return nil
}

func renderCoverage(cov devharvest.Coverage) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Metric", "Count"})
	tw.AppendRow(table.Row{"projects", strconv.Itoa(cov.Total)})
	tw.AppendRow(table.Row{"with description", strconv.Itoa(cov.WithAbout)})
	tw.AppendRow(table.Row{"missing description", strconv.Itoa(cov.MissingAbout)})
	tw.AppendRow(table.Row{"with GitHub link", strconv.Itoa(cov.WithGitHub)})

	stages := make([]string, 0, len(cov.Failures))
	for stage := range cov.Failures {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		tw.AppendRow(table.Row{"failed at " + stage, strconv.Itoa(cov.Failures[stage])})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
