package process

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrProcessFailedToExit is returned by TryWait when the OS reports a
// termination status that is neither a normal exit nor a signal
var ErrProcessFailedToExit = errors.New("process failed to exit")

// ExitStatus holds the status information of a Process
// after it has exited
type ExitStatus struct {
	PID int
	// Code is the exit code, 1 when the process was killed by a signal
	Code     int
	Signaled bool
}

// Success reports whether the process exited with code zero
func (s ExitStatus) Success() bool {
	return s.Code == 0
}

func (s ExitStatus) String() string {
	if s.Signaled {
		return "terminated by signal"
	}
	return fmt.Sprintf("exit status %d", s.Code)
}

func exitStatusOf(state *os.ProcessState, waitErr error) (ExitStatus, error) {
	if state == nil {
		if waitErr != nil {
			return ExitStatus{}, fmt.Errorf("%w: %v", ErrProcessFailedToExit, waitErr)
		}
		return ExitStatus{}, ErrProcessFailedToExit
	}

	if state.Exited() {
		return ExitStatus{PID: state.Pid(), Code: state.ExitCode()}, nil
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{PID: state.Pid(), Code: 1, Signaled: true}, nil
	}

	return ExitStatus{}, fmt.Errorf("%w: pid %d: %s", ErrProcessFailedToExit, state.Pid(), state)
}
