package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/harvest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Lister    *harvest.Lister
	Harvester *harvest.Harvester
	Enricher  *harvest.Enricher

	// Export, when set, receives the final result set of a scrape run.
	// Used when progress lives in a database rather than the output file.
	Export devharvest.ProgressStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" env:"DEVHARVEST_VERBOSE" help:"Enable debug logging"`

	List      ListCmd      `cmd:"" help:"List the projects of a Devpost gallery"`
	Scrape    ScrapeCmd    `cmd:"" help:"Scrape project pages with checkpointed progress"`
	Summarize SummarizeCmd `cmd:"" help:"Fill missing descriptions from GitHub READMEs"`
	Stats     StatsCmd     `cmd:"" help:"Report description coverage and write filled results"`
}

// RetryFlags are shared by commands that fetch pages.
type RetryFlags struct {
	Attempts    int           `default:"3" env:"DEVHARVEST_ATTEMPTS" help:"Attempts per page"`
	Backoff     time.Duration `default:"2s" env:"DEVHARVEST_BACKOFF" help:"Pause between attempts (0 for none)"`
	Timeout     time.Duration `default:"60s" env:"DEVHARVEST_TIMEOUT" help:"Timeout per attempt (0 for none)"`
	RenderDelay time.Duration `default:"1s" env:"DEVHARVEST_RENDER_DELAY" help:"Wait after scrolling before reading the page"`
}

// Policy returns the retry policy described by the flags.
func (f RetryFlags) Policy() harvest.Policy {
	return harvest.Policy{
		MaxAttempts:    f.Attempts,
		Backoff:        zeroDisables(f.Backoff),
		AttemptTimeout: zeroDisables(f.Timeout),
	}
}

// zeroDisables maps an explicit zero to the negative duration that harvest
// reads as "none".
func zeroDisables(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	GalleryURL string `arg:"" name:"gallery-url" help:"Project gallery URL, e.g. https://hack.devpost.com/project-gallery"`
	Out        string `default:"output.json" help:"Work list output file"`
	MaxPages   int    `default:"0" help:"Stop after this many pages (0 for all)"`

	RetryFlags `embed:""`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	In         string        `default:"output.json" help:"Work list input file"`
	Out        string        `default:"vary_webContentScraped.json" help:"Results output file"`
	Store      string        `default:"json" enum:"json,sqlite" env:"DEVHARVEST_STORE" help:"Progress store (json or sqlite)"`
	DB         string        `default:"devharvest.db" env:"DEVHARVEST_DB" help:"SQLite database path for --store=sqlite"`
	Delay      time.Duration `default:"300ms" env:"DEVHARVEST_DELAY" help:"Pause between projects (0 for none)"`
	NoProgress bool          `help:"Hide the progress bar"`

	RetryFlags `embed:""`
}

// ItemDelay returns the pause between projects for the harvester.
func (c *ScrapeCmd) ItemDelay() time.Duration {
	return zeroDisables(c.Delay)
}

// SummarizeCmd is the "summarize" subcommand.
type SummarizeCmd struct {
	In              string `default:"vary_webContentScraped.json" help:"Scraped results input file"`
	Out             string `default:"github_webContentScraped.json" help:"Enriched results output file"`
	Summarizer      string `default:"ollama" enum:"ollama,gemini" env:"DEVHARVEST_SUMMARIZER" help:"Summarizer backend (ollama or gemini)"`
	Model           string `env:"DEVHARVEST_MODEL" help:"Model name for the summarizer"`
	ReadmeExtractor string `default:"trafilatura" enum:"trafilatura,readability" help:"Content extractor for rendered repository pages"`
	NoBrowser       bool   `help:"Only use raw README files, never render repository pages"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	In      string `default:"github_webContentScraped.json" help:"Results input file"`
	Out     string `default:"filled_webContentScraped.json" help:"Output file for results with descriptions"`
	NoWrite bool   `help:"Only report, do not write the output file"`
}
