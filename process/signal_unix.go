//go:build !windows

package process

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var platformSignaler signaler = groupSignaler{}

func (s Signal) unix() unix.Signal {
	switch s {
	case SIGTERM:
		return unix.SIGTERM
	case SIGKILL:
		return unix.SIGKILL
	default:
		return unix.SIGINT
	}
}

// groupSignaler signals the negative pid, that is the whole process
// group the child leads, so commands forked by the shell die too
type groupSignaler struct{}

func (groupSignaler) deliver(p *os.Process, sig Signal) error {
	err := unix.Kill(-p.Pid, sig.unix())
	if errors.Is(err, unix.ESRCH) {
		// already gone
		return nil
	}
	return err
}
