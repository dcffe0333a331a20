package fs

import "github.com/fwojciec/devharvest"

// ReadWorkItems reads a JSON array of work items from path.
// A missing file is reported as ENOTFOUND.
func ReadWorkItems(path string) ([]devharvest.WorkItem, error) {
	var items []devharvest.WorkItem
	ok, err := readJSON(path, &items)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, devharvest.Errorf(devharvest.ENOTFOUND, "work list %s not found or empty", path)
	}
	return items, nil
}

// WriteWorkItems writes items to path as an indented JSON array.
func WriteWorkItems(path string, items []devharvest.WorkItem) error {
	if items == nil {
		items = []devharvest.WorkItem{}
	}
	return writeJSON(path, items)
}

// ReadResults reads a JSON array of results from path, as written by a
// ProgressStore. A missing file is reported as ENOTFOUND.
func ReadResults(path string) ([]*devharvest.Result, error) {
	var results []*devharvest.Result
	ok, err := readJSON(path, &results)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, devharvest.Errorf(devharvest.ENOTFOUND, "results %s not found or empty", path)
	}
	return results, nil
}

// WriteResults writes results to path as an indented JSON array.
func WriteResults(path string, results []*devharvest.Result) error {
	if results == nil {
		results = []*devharvest.Result{}
	}
	return writeJSON(path, results)
}
