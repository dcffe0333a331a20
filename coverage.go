package devharvest

// Coverage summarizes how complete a set of results is.
type Coverage struct {
	Total        int
	WithAbout    int
	MissingAbout int
	WithGitHub   int

	// Failures counts incomplete results by failure reason.
	Failures map[string]int
}

// MissingRatio returns the fraction of results without an about text.
// Returns 0 for an empty set.
func (c Coverage) MissingRatio() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.MissingAbout) / float64(c.Total)
}

// MeasureCoverage computes coverage statistics for results.
func MeasureCoverage(results []*Result) Coverage {
	c := Coverage{
		Total:    len(results),
		Failures: make(map[string]int),
	}
	for _, r := range results {
		if r.About != nil {
			c.WithAbout++
		} else {
			c.MissingAbout++
		}
		if r.GitHub != nil {
			c.WithGitHub++
		}
		if r.Failure != "" {
			c.Failures[r.Failure]++
		}
	}
	return c
}

// Summarized returns the results that carry an about text, in order.
func Summarized(results []*Result) []*Result {
	out := make([]*Result, 0, len(results))
	for _, r := range results {
		if r.About != nil {
			out = append(out, r)
		}
	}
	return out
}
