package manager

import (
	"errors"
	"sync"

	"github.com/nixpare/together/internal/terminal"
	"github.com/nixpare/together/process"
)

// Handle is the front door to a running Manager. Every method sends
// one request and blocks until the reply arrives, which takes at most
// one reap cycle.
//
// The Handle returned by Start owns the manager: its Close kills
// every process and waits for the control loop to end. Handles
// obtained with Subscribe share the mailbox but their Close does
// nothing.
type Handle struct {
	requests chan<- request
	done     <-chan struct{}
	owner    bool

	closeOnce sync.Once
	closeErr  error
}

// Subscribe returns a non-owning Handle to the same manager
func (h *Handle) Subscribe() *Handle {
	return &Handle{
		requests: h.requests,
		done:     h.done,
	}
}

// Done is closed once the control loop has terminated
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// send delivers req and waits for its reply. ErrClosed is returned
// when the loop is already gone.
func send[T any](h *Handle, req request, reply chan result[T]) (T, error) {
	select {
	case h.requests <- req:
	case <-h.done:
		var zero T
		return zero, ErrClosed
	}

	res := <-reply
	return res.val, res.err
}

// Spawn starts command with the manager policy and returns its id
func (h *Handle) Spawn(command string) (process.ID, error) {
	reply := newReply[process.ID]()
	return send(h, createRequest{command: command, reply: reply}, reply)
}

// SpawnAdvanced starts command with the stdio mode and working
// directory of opts
func (h *Handle) SpawnAdvanced(command string, opts CreateOptions) (process.ID, error) {
	reply := newReply[process.ID]()
	return send(h, createRequest{command: command, opts: &opts, reply: reply}, reply)
}

// Wait returns a channel closed when the process id is reaped. It
// never fires for another id and has no timeout.
func (h *Handle) Wait(id process.ID) (<-chan struct{}, error) {
	reply := newReply[<-chan struct{}]()
	return send(h, waitRequest{id: id, reply: reply}, reply)
}

// Kill sends SIGINT to the process id
func (h *Handle) Kill(id process.ID) error {
	return h.KillAdvanced(id, process.SIGINT)
}

// KillAdvanced sends sig to the process id
func (h *Handle) KillAdvanced(id process.ID, sig process.Signal) error {
	reply := newReply[struct{}]()
	_, err := send(h, killRequest{id: id, signal: sig, reply: reply}, reply)
	return err
}

// KillAll signals every process and makes the manager stop once they
// have all exited
func (h *Handle) KillAll() error {
	reply := newReply[struct{}]()
	_, err := send(h, killAllRequest{reply: reply}, reply)
	return err
}

// List returns the ids of the live processes, by sequence number
func (h *Handle) List() ([]process.ID, error) {
	reply := newReply[[]process.ID]()
	return send(h, listRequest{reply: reply}, reply)
}

// SetMute mutes or unmutes the forwarded stdout of the process id
func (h *Handle) SetMute(id process.ID, muted bool) error {
	reply := newReply[struct{}]()
	_, err := send(h, muteRequest{id: id, muted: muted, reply: reply}, reply)
	return err
}

// Restart kills id and spawns command in its place. Nothing is spawned
// when the kill fails, in particular with ErrNoSuchProcess when the
// process is already gone.
func (h *Handle) Restart(id process.ID, command string) (process.ID, error) {
	if err := h.Kill(id); err != nil {
		return process.ID{}, err
	}
	return h.Spawn(command)
}

// Close shuts the manager down if h is the owning handle: it sends
// KillAll and waits for the control loop to end. A manager that is
// already gone is not an error. When some process could not be
// signaled Close returns the error without waiting, since that process
// may never exit. Close is idempotent; on a subscribed handle it does
// nothing.
func (h *Handle) Close() error {
	if !h.owner {
		return nil
	}

	h.closeOnce.Do(func() {
		err := h.KillAll()
		switch {
		case errors.Is(err, ErrClosed):
			return
		case err != nil:
			terminal.LogErr("Failed to kill all processes: %v", err)
			h.closeErr = err
			return
		}
		<-h.done
	})
	return h.closeErr
}
