package devharvest

import "context"

// WorkItem is a gallery project waiting to be scraped.
type WorkItem struct {
	Name string `json:"project_name"`
	Link string `json:"project_link"`
}

// Validate returns an error if the work item contains invalid fields.
func (w *WorkItem) Validate() error {
	if w.Link == "" {
		return Errorf(EINVALID, "project link required")
	}
	return nil
}

// Failure reasons recorded on incomplete results.
const (
	FailureFetch     = "fetch"
	FailureReadme    = "readme"
	FailureSummarize = "summarize"
)

// ProjectDetails holds the fields extracted from a project page.
type ProjectDetails struct {
	Title  string
	About  *string
	GitHub *string
	Tools  []string
}

// Result is a scraped project as persisted in the progress store.
// A nil About or GitHub is written as JSON null.
type Result struct {
	Name    string   `json:"name"`
	Link    string   `json:"link"`
	About   *string  `json:"about"`
	GitHub  *string  `json:"github"`
	Tools   []string `json:"tools"`
	Failure string   `json:"failure,omitempty"`
}

// NewResult builds the result for a successfully scraped work item.
func NewResult(item WorkItem, details *ProjectDetails) *Result {
	tools := details.Tools
	if tools == nil {
		tools = []string{}
	}
	return &Result{
		Name:   item.Name,
		Link:   item.Link,
		About:  details.About,
		GitHub: details.GitHub,
		Tools:  tools,
	}
}

// NewSentinel builds the placeholder result recorded when every attempt
// to scrape a work item failed. All extracted fields are null.
func NewSentinel(item WorkItem) *Result {
	return &Result{
		Name:    item.Name,
		Link:    item.Link,
		Failure: FailureFetch,
	}
}

// IsSentinel reports whether the result is a fetch-failure placeholder.
func (r *Result) IsSentinel() bool {
	return r.Failure == FailureFetch && r.About == nil && r.GitHub == nil && r.Tools == nil
}

// ProgressStore persists the ordered sequence of completed results.
// Save replaces the whole stored sequence.
type ProgressStore interface {
	// Load returns all stored results in order.
	// An absent store yields an empty sequence and no error.
	Load(ctx context.Context) ([]*Result, error)

	// Save rewrites the store with results.
	Save(ctx context.Context, results []*Result) error
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
