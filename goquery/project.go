package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/devharvest"
)

// Ensure ProjectExtractor implements devharvest.ProjectExtractor at compile time.
var _ devharvest.ProjectExtractor = (*ProjectExtractor)(nil)

// AboutHeading is the section label whose paragraphs form the about text.
const AboutHeading = "What it does"

const githubLabel = "GitHub Repo"

// ProjectExtractor reads a rendered Devpost project page.
type ProjectExtractor struct {
	heading string
}

// NewProjectExtractor creates a ProjectExtractor reading the AboutHeading section.
func NewProjectExtractor() *ProjectExtractor {
	return &ProjectExtractor{heading: normalize(AboutHeading)}
}

// Extract returns the about text, GitHub link and tools of the page.
// A page without a title and without any of those fields is treated as a
// placeholder that has not rendered yet and yields EEMPTY.
func (e *ProjectExtractor) Extract(html string, pageURL string) (*devharvest.ProjectDetails, error) {
	doc, base, err := parse(html, pageURL)
	if err != nil {
		return nil, err
	}

	details := &devharvest.ProjectDetails{
		Title: strings.TrimSpace(doc.Find("#app-title").First().Text()),
		About: e.about(doc),
		Tools: tools(doc),
	}

	doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if strings.TrimSpace(span.Text()) != githubLabel {
			return true
		}
		if href, ok := span.Closest("a").Attr("href"); ok {
			if resolved := resolveURL(base, href); resolved != "" {
				details.GitHub = &resolved
			}
		}
		return false
	})

	if details.Title == "" && details.About == nil && details.GitHub == nil && len(details.Tools) == 0 {
		return nil, devharvest.Errorf(devharvest.EEMPTY, "no project content on %s", pageURL)
	}
	return details, nil
}

// about joins the paragraphs directly following the first matching heading.
func (e *ProjectExtractor) about(doc *goquery.Document) *string {
	heading := doc.Find("h1, h2, h3, h4").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return normalize(h.Text()) == e.heading
	}).First()
	if heading.Length() == 0 {
		return nil
	}

	var paragraphs []string
	for sib := heading.Next(); sib.Length() > 0 && goquery.NodeName(sib) == "p"; sib = sib.Next() {
		if text := strings.TrimSpace(sib.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	if len(paragraphs) == 0 {
		return nil
	}
	about := strings.Join(paragraphs, "\n\n")
	return &about
}

func tools(doc *goquery.Document) []string {
	out := []string{}
	doc.Find("#built-with span").Each(func(_ int, span *goquery.Selection) {
		if text := strings.TrimSpace(span.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}
