// Package manager runs the process supervision actor: a single
// goroutine owning the table of live child processes. Every read and
// write of the table goes through its mailbox, reached with a Handle.
package manager

import (
	"io"
	"os"
	"time"

	"github.com/nixpare/together/process"
)

const (
	// DefaultPollInterval is how long the loop waits for a request
	// before reaping finished children
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultKillGrace is how long a draining manager waits for its
	// processes to exit after KillAll before sending SIGKILL. Quit on
	// completion waits as long at most for the last output to be
	// forwarded.
	DefaultKillGrace = 5 * time.Second
)

// child is what the table needs from a spawned process
type child interface {
	Kill(sig process.Signal) error
	TryWait() (process.ExitStatus, bool, error)
	SetMuted(muted bool)
	ForwardStdio(id process.ID, stdout, stderr io.Writer) <-chan struct{}
	Release()
}

type spawnFunc func(command, cwd string, stdio process.Stdio) (child, error)

func spawnProcess(command, cwd string, stdio process.Stdio) (child, error) {
	p, err := process.Spawn(command, cwd, stdio)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Manager is the actor state. It is only ever touched by the
// goroutine started with Start.
type Manager struct {
	requests chan request
	done     chan struct{}

	processes   map[process.ID]child
	waitHandles map[process.ID]chan struct{}
	// closed once the output of the process is fully forwarded
	forwarded map[process.ID]<-chan struct{}
	index     uint32
	spawn     spawnFunc

	// draining state, set by KillAll
	killed    bool
	killedAt  time.Time
	escalated bool
	// an exit on error cascade happened
	failed bool

	rawStdio         bool
	exitOnError      bool
	quitOnCompletion bool
	cwd              string

	stdout, stderr io.Writer
	pollInterval   time.Duration
	killGrace      time.Duration
	exit           func(code int)
}

// Option configures a Manager before it starts
type Option func(*Manager)

// WithRawMode makes children inherit the program stdio instead of
// having their output labeled and forwarded
func WithRawMode(raw bool) Option {
	return func(m *Manager) { m.rawStdio = raw }
}

// WithExitOnError force-kills every process as soon as one exits with
// a non-zero status
func WithExitOnError(exitOnError bool) Option {
	return func(m *Manager) { m.exitOnError = exitOnError }
}

// WithQuitOnCompletion terminates the whole program once the last
// tracked process has exited
func WithQuitOnCompletion(quit bool) Option {
	return func(m *Manager) { m.quitOnCompletion = quit }
}

// WithWorkingDirectory sets the directory commands run in when the
// create request does not name one
func WithWorkingDirectory(cwd string) Option {
	return func(m *Manager) { m.cwd = cwd }
}

// WithOutput sets where forwarded stdout and stderr lines are written
func WithOutput(stdout, stderr io.Writer) Option {
	return func(m *Manager) { m.stdout, m.stderr = stdout, stderr }
}

// WithPollInterval changes the reap cadence
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.pollInterval = d }
}

// WithKillGrace changes how long KillAll waits before escalating to SIGKILL
func WithKillGrace(d time.Duration) Option {
	return func(m *Manager) { m.killGrace = d }
}

// WithExitFunc replaces os.Exit as the way quit on completion ends
// the program
func WithExitFunc(exit func(code int)) Option {
	return func(m *Manager) { m.exit = exit }
}

// New creates a Manager. Quit on completion is on by default, like
// the command line tool; everything else is off.
func New(opts ...Option) *Manager {
	m := &Manager{
		requests:         make(chan request),
		done:             make(chan struct{}),
		processes:        make(map[process.ID]child),
		waitHandles:      make(map[process.ID]chan struct{}),
		forwarded:        make(map[process.ID]<-chan struct{}),
		spawn:            spawnProcess,
		quitOnCompletion: true,
		stdout:           os.Stdout,
		stderr:           os.Stderr,
		pollInterval:     DefaultPollInterval,
		killGrace:        DefaultKillGrace,
		exit:             os.Exit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start runs the control loop in its own goroutine and returns the
// owning Handle. Closing that handle kills every process and waits
// for the loop to end. Start must be called once.
func (m *Manager) Start() *Handle {
	go m.run()
	return &Handle{
		requests: m.requests,
		done:     m.done,
		owner:    true,
	}
}
