package rod

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/devharvest"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements devharvest.Fetcher at compile time.
var _ devharvest.Fetcher = (*Fetcher)(nil)

const (
	// DefaultFetchTimeout bounds a single page load.
	DefaultFetchTimeout = 60 * time.Second

	// DefaultRenderDelay is the pause after scrolling that lets lazy
	// content render before the HTML is captured.
	DefaultRenderDelay = time.Second
)

// DefaultConsoleIgnore lists console message fragments that are dropped.
var DefaultConsoleIgnore = []string{"JQMIGRATE", "Cookie"}

const scrollToBottom = `() => window.scrollTo(0, document.body.scrollHeight)`

// Fetcher renders pages in one headless Chrome tab that lives for the whole
// run. Calls to Fetch are serialized on that tab.
type Fetcher struct {
	launcher *launcher.Launcher
	browser  *rod.Browser

	mu   sync.Mutex
	page *rod.Page

	fetchTimeout  time.Duration
	renderDelay   time.Duration
	console       *slog.Logger
	consoleIgnore []string

	closed atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each Fetch call. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithRenderDelay sets the pause after scrolling. Zero disables it.
func WithRenderDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.renderDelay = d
	}
}

// WithConsoleLogger forwards browser console messages to logger, dropping
// messages that contain any of the ignore fragments. Without ignore
// fragments DefaultConsoleIgnore applies.
func WithConsoleLogger(logger *slog.Logger, ignore ...string) Option {
	return func(f *Fetcher) {
		f.console = logger
		if len(ignore) > 0 {
			f.consoleIgnore = ignore
		}
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an ESETUP error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout:  DefaultFetchTimeout,
		renderDelay:   DefaultRenderDelay,
		console:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		consoleIgnore: DefaultConsoleIgnore,
	}
	for _, opt := range opts {
		opt(f)
	}

	l := launcher.New().Headless(true).Leakless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, devharvest.Errorf(devharvest.ESETUP, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, devharvest.Errorf(devharvest.ESETUP, "connecting to browser: %v", err)
	}

	f.launcher = l
	f.browser = browser
	return f, nil
}

// LauncherPID returns the process ID of the launched browser.
func (f *Fetcher) LauncherPID() int {
	return f.launcher.PID()
}

// Fetch navigates the shared tab to url, scrolls to the bottom, waits for
// the render delay and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", devharvest.Errorf(devharvest.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	page, err := f.tab()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()
	p := page.Context(ctx)

	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for %s: %w", url, err)
	}
	if _, err := p.Eval(scrollToBottom); err != nil {
		return "", fmt.Errorf("scrolling %s: %w", url, err)
	}

	if f.renderDelay > 0 {
		t := time.NewTimer(f.renderDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return html, nil
}

// tab returns the shared page, creating it on first use. Callers hold f.mu.
func (f *Fetcher) tab() (*rod.Page, error) {
	if f.page != nil {
		return f.page, nil
	}
	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, devharvest.Errorf(devharvest.ESETUP, "opening page: %v", err)
	}
	go page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		f.logConsole(e)
	})()
	f.page = page
	return page, nil
}

func (f *Fetcher) logConsole(e *proto.RuntimeConsoleAPICalled) {
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		if v := arg.Value.Val(); v != nil {
			parts = append(parts, fmt.Sprint(v))
		} else if arg.Description != "" {
			parts = append(parts, arg.Description)
		}
	}
	msg := strings.Join(parts, " ")
	if msg == "" {
		return
	}
	for _, frag := range f.consoleIgnore {
		if strings.Contains(msg, frag) {
			return
		}
	}
	f.console.Debug("browser console", "type", string(e.Type), "message", msg)
}

// Close releases the browser and its process. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.browser.Close()
	f.launcher.Kill()
	f.launcher.Cleanup()
	f.page = nil
	return err
}
