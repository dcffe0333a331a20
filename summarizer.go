package devharvest

import (
	"context"
	"fmt"
	"strings"
)

// MaxReadmeRunes caps the README text handed to a summarizer.
const MaxReadmeRunes = 3000

// Summarizer condenses README text into a short plain-text project summary.
type Summarizer interface {
	Summarize(ctx context.Context, readme string) (string, error)
}

// ReadmeLoader retrieves the README text of a GitHub repository.
type ReadmeLoader interface {
	// Load returns the README as plain text or Markdown.
	// Returns ENOTFOUND if no README could be retrieved.
	Load(ctx context.Context, githubURL string) (string, error)
}

// SummaryPrompt builds the summarization prompt for a README.
// The README is truncated to MaxReadmeRunes.
func SummaryPrompt(readme string) string {
	return fmt.Sprintf(`
Provide a short summary of the project limited to 100 words based on this README file. Provide just the response, without anything else.

%s
`, TruncateRunes(readme, MaxReadmeRunes))
}

// TruncateRunes shortens s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// IsMissingReadme reports whether fetched README text is empty or a
// "404: Not Found" placeholder served instead of the file.
func IsMissingReadme(text string) bool {
	text = strings.TrimSpace(text)
	return text == "" || strings.HasPrefix(text, "404: Not Found")
}
