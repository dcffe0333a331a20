package devharvest

// ProjectExtractor pulls project details out of a rendered project page.
type ProjectExtractor interface {
	// Extract parses the page HTML. Relative links are resolved against pageURL.
	// Returns EEMPTY when the page carries no project content.
	Extract(html string, pageURL string) (*ProjectDetails, error)
}

// GalleryParser lists the project cards on a rendered gallery page.
type GalleryParser interface {
	// ParseGallery returns the work items in document order.
	// An empty slice means the gallery has no more pages.
	ParseGallery(html string, pageURL string) ([]WorkItem, error)
}

// ExtractResult holds the main content extracted from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// ContentExtractor extracts main content from HTML pages, removing boilerplate.
type ContentExtractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be clean HTML (e.g., from a ContentExtractor).
	Convert(html string) (string, error)
}
