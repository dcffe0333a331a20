package mock

import "github.com/fwojciec/devharvest"

// Compile-time interface verification.
var (
	_ devharvest.ProjectExtractor = (*ProjectExtractor)(nil)
	_ devharvest.GalleryParser    = (*GalleryParser)(nil)
	_ devharvest.ContentExtractor = (*ContentExtractor)(nil)
)

// ProjectExtractor is a mock implementation of devharvest.ProjectExtractor.
type ProjectExtractor struct {
	ExtractFn func(html, pageURL string) (*devharvest.ProjectDetails, error)
}

func (e *ProjectExtractor) Extract(html, pageURL string) (*devharvest.ProjectDetails, error) {
	return e.ExtractFn(html, pageURL)
}

// GalleryParser is a mock implementation of devharvest.GalleryParser.
type GalleryParser struct {
	ParseGalleryFn func(html, pageURL string) ([]devharvest.WorkItem, error)
}

func (p *GalleryParser) ParseGallery(html, pageURL string) ([]devharvest.WorkItem, error) {
	return p.ParseGalleryFn(html, pageURL)
}

// ContentExtractor is a mock implementation of devharvest.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*devharvest.ExtractResult, error)
}

func (e *ContentExtractor) Extract(html string) (*devharvest.ExtractResult, error) {
	return e.ExtractFn(html)
}
