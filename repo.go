package devharvest

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Repo identifies a GitHub repository referenced by a project.
type Repo struct {
	Owner string
	Name  string

	// Branch is set when the link pointed into a tree or blob.
	Branch string
}

// ParseRepo parses a GitHub repository link such as
// https://github.com/owner/repo or https://github.com/owner/repo/tree/dev.
func ParseRepo(githubURL string) (*Repo, error) {
	u, err := url.Parse(strings.TrimSpace(githubURL))
	if err != nil {
		return nil, Errorf(EINVALID, "invalid GitHub URL: %v", err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "github.com" {
		return nil, Errorf(EINVALID, "not a GitHub URL: %s", githubURL)
	}

	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segs) < 2 {
		return nil, Errorf(EINVALID, "GitHub URL has no repository: %s", githubURL)
	}

	repo := &Repo{
		Owner: segs[0],
		Name:  strings.TrimSuffix(segs[1], ".git"),
	}
	if len(segs) > 3 && (segs[2] == "tree" || segs[2] == "blob") {
		repo.Branch = segs[3]
	}
	return repo, nil
}

// URL returns the canonical repository page.
func (r *Repo) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s", r.Owner, r.Name)
}

// ReadmeURLs returns raw README locations in the order they should be tried:
// the linked branch (if any), then main, then master.
func (r *Repo) ReadmeURLs() []string {
	var branches []string
	if r.Branch != "" {
		branches = append(branches, r.Branch)
	}
	for _, b := range []string{"main", "master"} {
		if !slices.Contains(branches, b) {
			branches = append(branches, b)
		}
	}

	urls := make([]string, 0, len(branches))
	for _, b := range branches {
		urls = append(urls, fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/README.md", r.Owner, r.Name, b))
	}
	return urls
}
