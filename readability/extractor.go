// Package readability extracts README content from rendered GitHub
// repository pages using go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/devharvest"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements devharvest.ContentExtractor at compile time.
var _ devharvest.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct {
	pageURL *url.URL
}

// NewExtractor creates a new Extractor. Relative links in the content are
// resolved against pageURL when it is a valid absolute URL.
func NewExtractor(pageURL string) *Extractor {
	e := &Extractor{}
	if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
		e.pageURL = u
	}
	return e
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*devharvest.ExtractResult, error) {
	if rawHTML == "" {
		return nil, devharvest.Errorf(devharvest.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.pageURL)
	if err != nil {
		return nil, devharvest.Errorf(devharvest.EEMPTY, "no readable content: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, devharvest.Errorf(devharvest.EEMPTY, "no readable content")
	}

	return &devharvest.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
