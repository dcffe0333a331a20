//go:build integration

package rod_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/devharvest/goquery"
	"github.com/fwojciec/devharvest/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Integration_DevpostProject(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	const pageURL = "https://devpost.com/software/devpost"
	html, err := fetcher.Fetch(ctx, pageURL)
	require.NoError(t, err)

	// The rendered page must carry the sections the extractor reads.
	details, err := goquery.NewProjectExtractor().Extract(html, pageURL)
	require.NoError(t, err)
	assert.NotEmpty(t, details.Title)

	t.Logf("Fetched %d bytes from %s", len(html), pageURL)
}

func TestFetcher_Integration_DevpostGallery(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	const pageURL = "https://hackmit-2023.devpost.com/project-gallery?page=1"
	html, err := fetcher.Fetch(ctx, pageURL)
	require.NoError(t, err)

	items, err := goquery.NewGalleryParser().ParseGallery(html, pageURL)
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}
