package process

import (
	"os"
	"os/signal"
	"syscall"
)

// ListenForCTRLC returns a channel receiving every interrupt (CTRL+C)
// and termination request sent to the program, and a function that
// stops the delivery
func ListenForCTRLC() (<-chan os.Signal, func()) {
	exitC := make(chan os.Signal, 10)
	signal.Notify(exitC, os.Interrupt, syscall.SIGTERM)
	return exitC, func() { signal.Stop(exitC) }
}
