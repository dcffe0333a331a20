package devharvest

import "context"

// Fetcher retrieves content from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch navigates to the URL and returns its content
	// (rendered HTML for browsers, the raw body for plain HTTP).
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (content string, err error)

	// Close releases the underlying session.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
