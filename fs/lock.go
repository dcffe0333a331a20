package fs

import (
	"github.com/fwojciec/devharvest"
	"github.com/gofrs/flock"
)

// Lock is an exclusive advisory lock guarding an output file against a
// second concurrent run.
type Lock struct {
	fl *flock.Flock
}

// LockPath returns the lock file used for path.
func LockPath(path string) string {
	return path + ".lock"
}

// AcquireLock takes the lock for path without blocking.
// Returns ESETUP when another process holds it.
func AcquireLock(path string) (*Lock, error) {
	fl := flock.New(LockPath(path))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, devharvest.Errorf(devharvest.ESETUP, "acquiring lock %s: %v", fl.Path(), err)
	}
	if !ok {
		return nil, devharvest.Errorf(devharvest.ESETUP, "%s is in use by another run", path)
	}
	return &Lock{fl: fl}, nil
}

// Release unlocks. The lock file itself is left in place.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
