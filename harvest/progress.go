package harvest

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressItem
	ProgressRetry
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type ProgressType

	// Completed and Total form the running count shown to the user.
	Completed int
	Total     int

	Name    string
	URL     string
	Attempt int
	Error   error
}

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

func (f ProgressFunc) emit(event ProgressEvent) {
	if f != nil {
		f(event)
	}
}

// Report holds the outcome of a run.
type Report struct {
	// Total is the number of results in the store after the run.
	Total int

	// Skipped counts work items that were already done or duplicated.
	Skipped int

	Processed     int
	Succeeded     int
	Failed        int
	PersistErrors int
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}
