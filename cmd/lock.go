package cmd

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/showcase-dl/showcase-dl/internal/config"
)

var instanceLock *flock.Flock

// AcquireLock takes the single-instance lock. Two instances would fight
// over the terminal, the log file and the download directory, so the
// second one refuses to start.
func AcquireLock() (bool, error) {
	instanceLock = flock.New(filepath.Join(config.GetAppDir(), "showcase-dl.lock"))
	return instanceLock.TryLock()
}

func ReleaseLock() error {
	if instanceLock == nil {
		return nil
	}
	return instanceLock.Unlock()
}
