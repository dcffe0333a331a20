package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/fs"
	"github.com/fwojciec/devharvest/gemini"
	"github.com/fwojciec/devharvest/goquery"
	"github.com/fwojciec/devharvest/harvest"
	"github.com/fwojciec/devharvest/htmltomarkdown"
	devhttp "github.com/fwojciec/devharvest/http"
	"github.com/fwojciec/devharvest/ollama"
	"github.com/fwojciec/devharvest/readability"
	"github.com/fwojciec/devharvest/rod"
	devslog "github.com/fwojciec/devharvest/slog"
	"github.com/fwojciec/devharvest/sqlite"
	"github.com/fwojciec/devharvest/trafilatura"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".devharvest.env"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, opened only for --store=sqlite.
	DB *sqlite.DB

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program, releasing the browser and database.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("devharvest"),
		kong.Description("Resumable Devpost project scraper"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'devharvest --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())

	defer m.Close()

	switch kongCtx.Command() {
	case "list <gallery-url>":
		browser, err := m.browser(stderr, deps.Logger, cli.List.RetryFlags)
		if err != nil {
			return err
		}
		deps.Lister = &harvest.Lister{
			Fetcher:  browser,
			Parser:   goquery.NewGalleryParser(),
			Limiter:  harvest.NewDomainLimiter(1.0),
			Policy:   cli.List.Policy(),
			Logger:   deps.Logger,
			MaxPages: cli.List.MaxPages,
		}

	case "scrape":
		store, err := m.progressStore(&cli.Scrape)
		if err != nil {
			return err
		}
		if cli.Scrape.Store == "sqlite" {
			deps.Export = fs.NewProgressStore(cli.Scrape.Out)
		}
		browser, err := m.browser(stderr, deps.Logger, cli.Scrape.RetryFlags)
		if err != nil {
			return err
		}
		deps.Harvester = &harvest.Harvester{
			Fetcher:   browser,
			Extractor: goquery.NewProjectExtractor(),
			Store:     devslog.NewLoggingStore(store, deps.Logger),
			Logger:    deps.Logger,
			Policy:    cli.Scrape.Policy(),
			ItemDelay: cli.Scrape.ItemDelay(),
		}

	case "summarize":
		summarizer, err := m.summarizer(ctx, stderr, deps.Logger, &cli.Summarize)
		if err != nil {
			return err
		}
		loader := &harvest.ReadmeLoader{
			Raw: devhttp.NewFetcher(
				devhttp.WithLimiter(harvest.NewDomainLimiter(2.0)),
			),
			Logger: deps.Logger,
		}
		if !cli.Summarize.NoBrowser {
			browser, err := m.browser(stderr, deps.Logger, RetryFlags{Timeout: rod.DefaultFetchTimeout, RenderDelay: rod.DefaultRenderDelay})
			if err != nil {
				return err
			}
			loader.Pages = browser
			loader.Converter = htmltomarkdown.NewConverter()
			if cli.Summarize.ReadmeExtractor == "readability" {
				loader.Extractor = readability.NewExtractor("https://github.com/")
			} else {
				loader.Extractor = trafilatura.NewExtractor()
			}
		}
		deps.Enricher = &harvest.Enricher{
			Readmes:    devslog.NewLoggingReadmeLoader(loader, deps.Logger),
			Summarizer: devslog.NewLoggingSummarizer(summarizer, deps.Logger),
			Store:      devslog.NewLoggingStore(fs.NewProgressStore(cli.Summarize.Out), deps.Logger),
			Logger:     deps.Logger,
		}
	}

	return kongCtx.Run(deps)
}

// browser launches the shared headless browser, wrapped with logging.
func (m *Main) browser(stderr io.Writer, logger *slog.Logger, flags RetryFlags) (devharvest.Fetcher, error) {
	opts := []rod.Option{
		rod.WithConsoleLogger(logger.With("source", "browser")),
		rod.WithRenderDelay(flags.RenderDelay),
	}
	if flags.Timeout > 0 {
		opts = append(opts, rod.WithFetchTimeout(flags.Timeout))
	}
	fetcher, err := rod.NewFetcher(opts...)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.closers = append(m.closers, fetcher.Close)
	return devslog.NewLoggingFetcher(fetcher, logger), nil
}

// progressStore opens the store selected by --store.
func (m *Main) progressStore(c *ScrapeCmd) (devharvest.ProgressStore, error) {
	if c.Store != "sqlite" {
		return fs.NewProgressStore(c.Out), nil
	}
	m.DB = sqlite.NewDB(c.DB)
	if err := m.DB.Open(); err != nil {
		return nil, fmt.Errorf("failed to open database at %q: %w", c.DB, err)
	}
	m.closers = append(m.closers, m.DB.Close)
	return sqlite.NewProgressStore(m.DB), nil
}

// summarizer builds the backend selected by --summarizer.
func (m *Main) summarizer(ctx context.Context, stderr io.Writer, logger *slog.Logger, c *SummarizeCmd) (devharvest.Summarizer, error) {
	if c.Summarizer == "ollama" {
		return ollama.NewSummarizer(c.Model, ollama.WithLogger(logger.With("source", "ollama"))), nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, devharvest.Errorf(devharvest.ESETUP, "GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return gemini.NewSummarizer(client, c.Model), nil
}
