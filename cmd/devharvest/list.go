package main

import (
	"fmt"

	"github.com/fwojciec/devharvest"
	"github.com/fwojciec/devharvest/fs"
	"github.com/fwojciec/devharvest/harvest"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	deps.Lister.OnPage = func(page int, pageURL string, found int) {
		fmt.Fprintf(deps.Stdout, "  page %d: %d projects (%s)\n", page, found, harvest.TruncateURL(pageURL, 60))
	}

	items, err := deps.Lister.ListProjects(deps.Ctx, c.GalleryURL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
		return err
	}

	if err := fs.WriteWorkItems(c.Out, items); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", devharvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Listed %d projects to %s\n", len(items), c.Out)
	return nil
}
