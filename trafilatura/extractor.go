// Package trafilatura extracts README content from rendered GitHub
// repository pages using go-trafilatura.
package trafilatura

import (
	"bytes"
	"slices"
	"strings"

	"github.com/fwojciec/devharvest"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements devharvest.ContentExtractor at compile time.
var _ devharvest.ContentExtractor = (*Extractor)(nil)

// readmeClass marks the element GitHub renders a README into.
const readmeClass = "markdown-body"

// Extractor narrows a repository page to its README article, when one is
// present, and lets trafilatura strip what remains of the page chrome.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the README content of rawHTML.
func (e *Extractor) Extract(rawHTML string) (*devharvest.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, devharvest.Errorf(devharvest.EINVALID, "empty HTML input")
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, devharvest.Errorf(devharvest.EINVALID, "failed to parse HTML: %v", err)
	}
	if article := findByClass(doc, readmeClass); article != nil {
		scoped, err := renderNode(article)
		if err != nil {
			return nil, err
		}
		rawHTML = "<html><body>" + scoped + "</body></html>"
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, devharvest.Errorf(devharvest.EEMPTY, "no README content: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(contentHTML) == "" {
		return nil, devharvest.Errorf(devharvest.EEMPTY, "no README content")
	}

	return &devharvest.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// findByClass returns the first element carrying class, depth first.
func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "class" && slices.Contains(strings.Fields(a.Val), class) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
