package harvest

import (
	"context"
	"log/slog"

	"github.com/fwojciec/devharvest"
)

var _ devharvest.ReadmeLoader = (*ReadmeLoader)(nil)

// ReadmeLoader retrieves README text for a GitHub repository. It tries the
// raw README on each candidate branch over plain HTTP first, then falls back
// to rendering the repository page and extracting its main content.
type ReadmeLoader struct {
	// Raw fetches raw.githubusercontent.com files.
	Raw devharvest.Fetcher

	// Pages, Extractor and Converter form the optional repository page
	// fallback. It is skipped unless all three are set.
	Pages     devharvest.Fetcher
	Extractor devharvest.ContentExtractor
	Converter devharvest.Converter

	Logger *slog.Logger
}

// Load returns the README text truncated to devharvest.MaxReadmeRunes.
func (l *ReadmeLoader) Load(ctx context.Context, githubURL string) (string, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	repo, err := devharvest.ParseRepo(githubURL)
	if err != nil {
		return "", err
	}

	for _, u := range repo.ReadmeURLs() {
		text, err := l.Raw.Fetch(ctx, u)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			logger.Debug("readme candidate failed", "url", u, "err", err)
			continue
		}
		if devharvest.IsMissingReadme(text) {
			continue
		}
		return devharvest.TruncateRunes(text, devharvest.MaxReadmeRunes), nil
	}

	if l.Pages != nil && l.Extractor != nil && l.Converter != nil {
		text, err := l.fromRepoPage(ctx, repo.URL())
		if err == nil && !devharvest.IsMissingReadme(text) {
			return devharvest.TruncateRunes(text, devharvest.MaxReadmeRunes), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		logger.Debug("repository page fallback failed", "url", repo.URL(), "err", err)
	}

	return "", devharvest.Errorf(devharvest.ENOTFOUND, "no README found for %s", githubURL)
}

func (l *ReadmeLoader) fromRepoPage(ctx context.Context, repoURL string) (string, error) {
	html, err := l.Pages.Fetch(ctx, repoURL)
	if err != nil {
		return "", err
	}
	extracted, err := l.Extractor.Extract(html)
	if err != nil {
		return "", err
	}
	return l.Converter.Convert(extracted.ContentHTML)
}
