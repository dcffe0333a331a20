// Package ollama summarizes READMEs with a local model through the ollama CLI.
package ollama

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/fwojciec/devharvest"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemma3"

// Ensure Summarizer implements devharvest.Summarizer at compile time.
var _ devharvest.Summarizer = (*Summarizer)(nil)

// Summarizer runs `ollama run <model>` once per README, writing the prompt
// to stdin and reading the summary from stdout.
type Summarizer struct {
	path   string
	args   []string
	logger *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithCommand replaces the command line. The prompt is still written to stdin.
func WithCommand(path string, args ...string) Option {
	return func(s *Summarizer) {
		s.path = path
		s.args = args
	}
}

// WithLogger receives the command's stderr at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

// NewSummarizer creates a Summarizer for model. An empty model selects DefaultModel.
func NewSummarizer(model string, opts ...Option) *Summarizer {
	if model == "" {
		model = DefaultModel
	}
	s := &Summarizer{
		path:   "ollama",
		args:   []string{"run", model},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns the trimmed model output for the summary prompt of readme.
// A command that cannot start or exits non-zero is an error.
func (s *Summarizer) Summarize(ctx context.Context, readme string) (string, error) {
	if strings.TrimSpace(readme) == "" {
		return "", devharvest.Errorf(devharvest.EINVALID, "readme required")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.path, s.args...)
	cmd.Stdin = strings.NewReader(devharvest.SummaryPrompt(readme))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		s.logger.Debug("ollama stderr", "output", msg)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", devharvest.Errorf(devharvest.EINTERNAL, "running %s: %v: %s", s.path, err, lastLine(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
