package manager

import "errors"

var (
	// ErrSpawnChildFailed is returned by Create when the OS refused to
	// start the shell. The process never enters the table.
	ErrSpawnChildFailed = errors.New("failed to spawn child process")
	// ErrKillChildFailed is returned by Kill when the signal could not
	// be delivered. The process stays in the table.
	ErrKillChildFailed = errors.New("failed to kill child process")
	// ErrNoSuchProcess is returned when the requested id is not, or no
	// longer, in the table
	ErrNoSuchProcess = errors.New("no such process")
	// ErrKillAllFailed is returned by KillAll when at least one process
	// could not be signaled
	ErrKillAllFailed = errors.New("failed to kill one or more processes")
	// ErrClosed is returned when the manager loop has already terminated
	ErrClosed = errors.New("process manager is closed")
)
