package manager

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nixpare/together/internal/terminal"
	"github.com/nixpare/together/process"
)

// run is the control loop. Requests are served one at a time in the
// order they arrive; every poll interval the finished children are
// reaped. The loop ends once KillAll was requested and the table is
// empty.
func (m *Manager) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case req := <-m.requests:
			req.serve(m)
		case <-ticker.C:
			if m.killed && len(m.processes) == 0 {
				return
			}
			m.reap()
		}
	}
}

func (m *Manager) create(command string, opts *CreateOptions) (process.ID, error) {
	stdio, cwd := process.StdioFromRaw(m.rawStdio), m.cwd
	if opts != nil {
		stdio = opts.Stdio
		if opts.Cwd != "" {
			cwd = opts.Cwd
		}
	}

	p, err := m.spawn(command, cwd, stdio)
	if err != nil {
		terminal.LogErr("Failed to start %s: %v", command, err)
		return process.ID{}, fmt.Errorf("%w: %v", ErrSpawnChildFailed, err)
	}

	id := process.NewID(m.index, command)
	m.index++

	if stdio != process.Raw {
		m.forwarded[id] = p.ForwardStdio(id, m.stdout, m.stderr)
	}
	m.processes[id] = p
	terminal.Log("Started %s", id)

	return id, nil
}

// wait registers the one-shot notifier closed when id is reaped.
// Waiters of the same id share the notifier.
func (m *Manager) wait(id process.ID) (<-chan struct{}, error) {
	if _, ok := m.processes[id]; !ok {
		return nil, ErrNoSuchProcess
	}

	ch, ok := m.waitHandles[id]
	if !ok {
		ch = make(chan struct{})
		m.waitHandles[id] = ch
	}
	return ch, nil
}

func (m *Manager) kill(id process.ID, sig process.Signal) error {
	p, ok := m.processes[id]
	if !ok {
		return ErrNoSuchProcess
	}

	if err := p.Kill(sig); err != nil {
		terminal.LogErr("Failed to kill %s: %v", id, err)
		return fmt.Errorf("%w: %v", ErrKillChildFailed, err)
	}
	terminal.Log("Killing %s", id)
	return nil
}

// killAll signals every live process and moves the manager into
// draining: from here on the loop ends as soon as the table is empty
func (m *Manager) killAll() error {
	if !m.killed {
		m.killed = true
		m.killedAt = time.Now()
	}

	var errs []error
	for _, id := range m.list() {
		if err := m.processes[id].Kill(process.SIGINT); err != nil {
			terminal.LogErr("Failed to kill %s: %v", id, err)
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		terminal.Log("Killing %s", id)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrKillAllFailed, errors.Join(errs...))
	}
	return nil
}

// list returns the live ids ordered by sequence number
func (m *Manager) list() []process.ID {
	ids := make([]process.ID, 0, len(m.processes))
	for id := range m.processes {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b process.ID) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return ids
}

func (m *Manager) setMute(id process.ID, muted bool) error {
	p, ok := m.processes[id]
	if !ok {
		return ErrNoSuchProcess
	}

	p.SetMuted(muted)
	if muted {
		terminal.Log("Muted %s", id)
	} else {
		terminal.Log("Unmuted %s", id)
	}
	return nil
}

// reap polls every process, removes the ones that exited and applies
// the exit on error and quit on completion policies.
//
// The exit on error cascade only sends SIGKILL: the killed processes
// leave the table on a later reap, like any other exit.
func (m *Manager) reap() {
	if len(m.processes) == 0 {
		return
	}

	if m.killed && !m.escalated && time.Since(m.killedAt) >= m.killGrace {
		m.escalated = true
		for _, id := range m.list() {
			terminal.LogErr("%s did not stop in %s, sending SIGKILL", id, m.killGrace)
			if err := m.processes[id].Kill(process.SIGKILL); err != nil {
				terminal.LogErr("Failed to kill %s: %v", id, err)
			}
		}
	}

	var exited []process.ID
	killAll := false
	for _, id := range m.list() {
		status, done, err := m.processes[id].TryWait()
		if err != nil {
			// retried on the next reap
			terminal.LogErr("Failed to check status of %s: %v", id, err)
			continue
		}
		if !done {
			continue
		}

		exited = append(exited, id)
		if m.exitOnError && !status.Success() {
			terminal.LogErr("%s: exited with non-zero status (%s)", id, status)
			killAll = true
		}
	}

	// a process somebody waits on is followed by whatever that caller
	// does next, so it never completes the run by itself
	unattended := false
	var flushing []<-chan struct{}
	for _, id := range exited {
		m.processes[id].Release()
		if ch, ok := m.forwarded[id]; ok {
			flushing = append(flushing, ch)
			delete(m.forwarded, id)
		}
		delete(m.processes, id)
		if ch, ok := m.waitHandles[id]; ok {
			close(ch)
			delete(m.waitHandles, id)
		} else {
			unattended = true
		}
		terminal.Log("Exited %s", id)
	}

	if killAll {
		m.failed = true
		for _, id := range m.list() {
			if err := m.processes[id].Kill(process.SIGKILL); err != nil {
				terminal.LogErr("Failed to kill %s => %v", id, err)
			}
		}
	}

	if len(exited) == 0 || len(m.processes) > 0 {
		return
	}

	terminal.Log("All processes have exited")
	if m.quitOnCompletion && !m.killed && unattended {
		terminal.Log("Stopping...")
		m.waitForwarded(flushing)
		code := 0
		if m.failed {
			code = 1
		}
		m.exit(code)
	}
}

// waitForwarded blocks until every channel in forwarded is closed, or
// the kill grace period has passed. A background child of the shell may
// keep a pipe open long after the shell itself exited.
func (m *Manager) waitForwarded(forwarded []<-chan struct{}) {
	timeout := time.NewTimer(m.killGrace)
	defer timeout.Stop()

	for _, ch := range forwarded {
		select {
		case <-ch:
		case <-timeout.C:
			terminal.LogErr("Output still pending after %s, stopping anyway", m.killGrace)
			return
		}
	}
}
