// Package fs provides JSON file storage for work lists and scrape progress.
package fs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/devharvest"
)

// writeJSON marshals v with two-space indentation and replaces path
// atomically: the data goes to a temp file in the same directory which is
// then renamed over path. Readers never observe a partial file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return devharvest.Errorf(devharvest.EINTERNAL, "encoding %s: %v", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "creating %s: %v", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "creating temp file: %v", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return devharvest.Errorf(devharvest.EPERSIST, "writing %s: %v", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return devharvest.Errorf(devharvest.EPERSIST, "syncing %s: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "closing %s: %v", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "chmod %s: %v", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return devharvest.Errorf(devharvest.EPERSIST, "replacing %s: %v", path, err)
	}
	return nil
}

// readJSON decodes path into v. It reports whether the file existed;
// an empty file counts as missing.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, devharvest.Errorf(devharvest.EPERSIST, "reading %s: %v", path, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, devharvest.Errorf(devharvest.EINVALID, "decoding %s: %v", path, err)
	}
	return true, nil
}
