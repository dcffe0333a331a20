// Package goquery reads Devpost pages with CSS selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/devharvest"
)

// parse loads html and the page URL used to resolve relative links.
func parse(html, pageURL string) (*goquery.Document, *url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, devharvest.Errorf(devharvest.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, devharvest.Errorf(devharvest.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, base, nil
}

// resolveURL resolves href against base, returning "" for links that are
// not HTTP(S) or cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// normalize trims and lowercases heading text for label comparison.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
