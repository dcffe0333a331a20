package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/devharvest"
)

// Ensure GalleryParser implements devharvest.GalleryParser at compile time.
var _ devharvest.GalleryParser = (*GalleryParser)(nil)

// UnnamedProject is the name given to cards without a title.
const UnnamedProject = "unnamed"

// GalleryParser reads the project cards of a Devpost project gallery page.
type GalleryParser struct{}

// NewGalleryParser creates a new GalleryParser.
func NewGalleryParser() *GalleryParser {
	return &GalleryParser{}
}

// ParseGallery returns one work item per project card, in document order.
func (p *GalleryParser) ParseGallery(html string, pageURL string) ([]devharvest.WorkItem, error) {
	doc, base, err := parse(html, pageURL)
	if err != nil {
		return nil, err
	}

	items := []devharvest.WorkItem{}
	doc.Find("a.block-wrapper-link").Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Attr("href")
		link := resolveURL(base, href)
		if link == "" {
			return
		}

		name := strings.TrimSpace(card.Find("h5").First().Text())
		if name == "" {
			name = UnnamedProject
		}
		items = append(items, devharvest.WorkItem{Name: name, Link: link})
	})
	return items, nil
}
