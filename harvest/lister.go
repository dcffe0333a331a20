package harvest

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/fwojciec/devharvest"
)

// Lister walks a paginated project gallery and collects its work items.
type Lister struct {
	Fetcher devharvest.Fetcher
	Parser  devharvest.GalleryParser

	// Limiter paces page requests per host. Optional.
	Limiter devharvest.DomainLimiter

	// Policy governs attempts per page. Zero fields fall back to DefaultPolicy.
	Policy Policy
	Logger *slog.Logger

	// MaxPages stops pagination after this many pages. Zero means no limit.
	MaxPages int

	// OnPage, if set, is called after each page with the number of projects found.
	OnPage func(page int, pageURL string, found int)
}

// GalleryPageURL returns the URL of the given 1-based gallery page.
func GalleryPageURL(galleryURL string, page int) (string, error) {
	u, err := parseGalleryURL(galleryURL)
	if err != nil {
		return "", err
	}
	return galleryPage(u, page), nil
}

func parseGalleryURL(galleryURL string) (*url.URL, error) {
	u, err := url.Parse(galleryURL)
	if err != nil {
		return nil, devharvest.Errorf(devharvest.EINVALID, "invalid gallery URL: %v", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, devharvest.Errorf(devharvest.EINVALID, "gallery URL must be absolute: %s", galleryURL)
	}
	return u, nil
}

func galleryPage(gallery *url.URL, page int) string {
	u := *gallery
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// ListProjects fetches gallery pages 1, 2, ... until a page lists no
// projects and returns every project found, deduplicated by link.
// A page that still fails after the retry policy ends the listing with an error.
func (l *Lister) ListProjects(ctx context.Context, galleryURL string) ([]devharvest.WorkItem, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gallery, err := parseGalleryURL(galleryURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var items []devharvest.WorkItem

	for page := 1; l.MaxPages <= 0 || page <= l.MaxPages; page++ {
		pageURL := galleryPage(gallery, page)

		found, err := l.listPage(ctx, gallery.Host, pageURL)
		if err != nil {
			return items, err
		}

		if l.OnPage != nil {
			l.OnPage(page, pageURL, len(found))
		}
		logger.Info("gallery page", "page", page, "url", pageURL, "found", len(found))

		if len(found) == 0 {
			break
		}

		for _, item := range found {
			if _, ok := seen[item.Link]; ok {
				continue
			}
			seen[item.Link] = struct{}{}
			items = append(items, item)
		}
	}

	return items, nil
}

func (l *Lister) listPage(ctx context.Context, host, pageURL string) ([]devharvest.WorkItem, error) {
	var found []devharvest.WorkItem
	err := Retry(ctx, l.Policy.withDefaults(), func(ctx context.Context) error {
		if l.Limiter != nil {
			if err := l.Limiter.Wait(ctx, host); err != nil {
				return err
			}
		}
		html, err := l.Fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return devharvest.Errorf(devharvest.EFETCH, "fetching %s: %w", pageURL, err)
		}
		found, err = l.Parser.ParseGallery(html, pageURL)
		return err
	}, nil)
	return found, err
}
