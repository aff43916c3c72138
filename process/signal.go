package process

import (
	"fmt"
	"os"
	"strings"
)

// Signal is the termination signal Kill delivers. Windows maps every
// Signal to the same terminate call.
type Signal int

const (
	// SIGINT is the default signal, the same a terminal sends on CTRL+C
	SIGINT Signal = iota
	SIGTERM
	// SIGKILL cannot be caught; used to force termination
	SIGKILL
)

func (s Signal) String() string {
	switch s {
	case SIGINT:
		return "SIGINT"
	case SIGTERM:
		return "SIGTERM"
	case SIGKILL:
		return "SIGKILL"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// Signals lists every Signal Kill accepts
func Signals() []Signal {
	return []Signal{SIGINT, SIGTERM, SIGKILL}
}

// ParseSignal accepts a signal name with or without the SIG prefix,
// in any case, or its unix number ("INT", "sigterm", "9")
func ParseSignal(name string) (Signal, error) {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "SIG") {
	case "INT", "2":
		return SIGINT, nil
	case "TERM", "15":
		return SIGTERM, nil
	case "KILL", "9":
		return SIGKILL, nil
	}
	return 0, fmt.Errorf("unknown signal %q", name)
}

// signaler delivers a Signal to a started child; each platform
// provides one implementation
type signaler interface {
	deliver(p *os.Process, sig Signal) error
}
