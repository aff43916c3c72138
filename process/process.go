package process

import (
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
)

// ID names a spawned process: the sequence number assigned by the
// supervisor plus the original command text. Two IDs are equal only
// when both fields match, so restarting the same command always yields
// a new ID. ID is a plain value and carries no control over the process.
type ID struct {
	Seq     uint32
	Command string
}

func NewID(seq uint32, command string) ID {
	return ID{Seq: seq, Command: command}
}

func (id ID) String() string {
	return fmt.Sprintf("[%d]: %s", id.Seq, id.Command)
}

// Stdio selects how the child's standard streams are wired
type Stdio int

const (
	// Piped captures both stdout and stderr so they can be
	// forwarded with ForwardStdio. It is the default mode.
	Piped Stdio = iota
	// Raw lets the child inherit the program's stdout and stderr;
	// nothing is forwarded and Mute has no effect.
	Raw
	// StderrOnly captures stderr for forwarding and lets the
	// child inherit stdout.
	StderrOnly
)

// StdioFromRaw maps the raw command line switch to a Stdio mode
func StdioFromRaw(raw bool) Stdio {
	if raw {
		return Raw
	}
	return Piped
}

func (s Stdio) String() string {
	switch s {
	case Piped:
		return "piped"
	case Raw:
		return "raw"
	case StderrOnly:
		return "stderr-only"
	default:
		return fmt.Sprintf("Stdio(%d)", int(s))
	}
}

// Process wraps the *exec.Cmd of one child started through the
// platform shell. The child is waited for in a background goroutine
// as soon as it starts, so TryWait never blocks and never has to
// touch the OS directly.
type Process struct {
	cmd      *exec.Cmd
	signaler signaler

	// read ends of the output pipes, nil when the stream is inherited
	// or after ForwardStdio took ownership of them
	stdout *os.File
	stderr *os.File

	muted    *atomic.Bool
	released *atomic.Bool

	exited  chan struct{}
	state   *os.ProcessState
	waitErr error
}

// Spawn launches command through the platform shell inside cwd (the
// current directory if empty). On unix the child leads a new process
// group so Kill can reach everything the shell forks.
func Spawn(command, cwd string, stdio Stdio) (*Process, error) {
	cmd := createCommand(command)
	cmd.Dir = cwd

	p := &Process{
		cmd:      cmd,
		signaler: platformSignaler,
		muted:    new(atomic.Bool),
		released: new(atomic.Bool),
		exited:   make(chan struct{}),
	}

	// the write ends belong to the child once it has started
	var childEnds []*os.File
	closeChildEnds := func() {
		for _, f := range childEnds {
			f.Close()
		}
	}

	if stdio == Piped {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("spawning %q: stdout pipe: %w", command, err)
		}
		cmd.Stdout, p.stdout = w, r
		childEnds = append(childEnds, w)
	} else {
		cmd.Stdout = os.Stdout
	}

	if stdio == Piped || stdio == StderrOnly {
		r, w, err := os.Pipe()
		if err != nil {
			closeChildEnds()
			p.closePipes()
			return nil, fmt.Errorf("spawning %q: stderr pipe: %w", command, err)
		}
		cmd.Stderr, p.stderr = w, r
		childEnds = append(childEnds, w)
	} else {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Start()
	closeChildEnds()
	if err != nil {
		p.closePipes()
		return nil, fmt.Errorf("spawning %q: %w", command, err)
	}

	go p.wait()
	return p, nil
}

// wait reaps the child and then closes exited to publish the result
func (p *Process) wait() {
	err := p.cmd.Wait()
	p.state = p.cmd.ProcessState
	p.waitErr = err
	close(p.exited)
}

// PID returns the OS process id of the shell running the command
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Kill sends sig to the child. On unix the signal goes to the whole
// process group; on Windows sig is ignored and the child is terminated.
// Killing a process that has already exited succeeds without doing
// anything.
func (p *Process) Kill(sig Signal) error {
	if p.hasExited() {
		return nil
	}

	if err := p.signaler.deliver(p.cmd.Process, sig); err != nil {
		return fmt.Errorf("sending %s to pid %d: %w", sig, p.PID(), err)
	}
	return nil
}

// TryWait reports whether the child has exited without blocking.
// While it is running exited is false. Once it has exited the status
// holds its exit code, with 1 standing in for a death by signal.
// ErrProcessFailedToExit is returned when the OS reported a status
// that is neither.
func (p *Process) TryWait() (status ExitStatus, exited bool, err error) {
	if !p.hasExited() {
		return ExitStatus{}, false, nil
	}

	status, err = exitStatusOf(p.state, p.waitErr)
	if err != nil {
		return ExitStatus{}, false, err
	}
	return status, true, nil
}

func (p *Process) hasExited() bool {
	select {
	case <-p.exited:
		return true
	default:
		return false
	}
}

// Mute holds back the forwarded stdout lines from the next line on.
// Stderr is never muted.
func (p *Process) Mute() {
	p.muted.Store(true)
}

// Unmute releases the stdout lines held back by Mute
func (p *Process) Unmute() {
	p.muted.Store(false)
}

// IsMuted reports the current state of the mute flag
func (p *Process) IsMuted() bool {
	return p.muted.Load()
}

// SetMuted is Mute or Unmute depending on muted
func (p *Process) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// Release tells the forwarder that nobody will unmute the process any
// more. Stdout lines held back by Mute, and the ones still to come, are
// dropped instead of waiting forever.
func (p *Process) Release() {
	p.released.Store(true)
}

func (p *Process) closePipes() {
	for _, f := range []*os.File{p.stdout, p.stderr} {
		if f != nil {
			f.Close()
		}
	}
	p.stdout, p.stderr = nil, nil
}

func (p *Process) String() string {
	var state string
	if p.hasExited() {
		state = "Exited"
	} else {
		state = fmt.Sprintf("Running - %d", p.PID())
	}
	return fmt.Sprintf("%s (%s)", p.cmd.String(), state)
}
