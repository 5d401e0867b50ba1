//go:build !unix

package download

import (
	"errors"
	"os/exec"

	"github.com/showcase-dl/showcase-dl/internal/state"
)

// classifyExit without signal introspection: platforms where a kill
// surfaces as a nonzero exit code rather than a wait status.
func classifyExit(waitErr error, wasInterrupted, wasKilled bool) (state.Status, string) {
	if waitErr == nil {
		return state.StatusFinished, ""
	}
	if wasInterrupted || wasKilled {
		return state.StatusCancelled, ""
	}
	var ee *exec.ExitError
	if errors.As(waitErr, &ee) {
		return state.StatusFailed, ""
	}
	return state.StatusFailed, waitErr.Error()
}
