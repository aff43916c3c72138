package process

import (
	"errors"
	"os"
)

var platformSignaler signaler = terminator{}

// terminator ignores the Signal: Windows has a single terminate
// primitive for another process
type terminator struct{}

func (terminator) deliver(p *os.Process, _ Signal) error {
	err := p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
