//go:build unix

package download

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"github.com/showcase-dl/showcase-dl/internal/state"
)

// classifyExit maps a child's exit to the entry's terminal state.
//
// A clean exit is Finished even while draining: a child that wrapped up
// its work inside the grace window keeps its natural outcome. Only
// termination by the interrupt or kill we sent counts as Cancelled.
func classifyExit(waitErr error, wasInterrupted, wasKilled bool) (state.Status, string) {
	if waitErr == nil {
		return state.StatusFinished, ""
	}

	var ee *exec.ExitError
	if !errors.As(waitErr, &ee) {
		return state.StatusFailed, waitErr.Error()
	}

	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		sig := ws.Signal()
		switch {
		case sig == syscall.SIGINT && wasInterrupted:
			return state.StatusCancelled, ""
		case sig == syscall.SIGKILL && wasKilled:
			return state.StatusCancelled, "killed after grace period"
		default:
			return state.StatusFailed, fmt.Sprintf("terminated by signal %s", sig)
		}
	}

	return state.StatusFailed, ""
}
