package manager

import "github.com/nixpare/together/process"

// request is one message of the mailbox protocol. Every request kind
// carries its own typed reply channel, so a caller can only ever
// receive the reply shape that belongs to what it asked.
type request interface {
	serve(m *Manager)
}

// result is the single reply a request gets
type result[T any] struct {
	val T
	err error
}

func newReply[T any]() chan result[T] {
	// buffered so the actor never blocks on a reply
	return make(chan result[T], 1)
}

// CreateOptions overrides the manager policy for one create request
type CreateOptions struct {
	Stdio process.Stdio
	// Cwd is the working directory, the manager's when empty
	Cwd string
}

type createRequest struct {
	command string
	opts    *CreateOptions
	reply   chan result[process.ID]
}

func (r createRequest) serve(m *Manager) {
	id, err := m.create(r.command, r.opts)
	r.reply <- result[process.ID]{id, err}
}

type waitRequest struct {
	id    process.ID
	reply chan result[<-chan struct{}]
}

func (r waitRequest) serve(m *Manager) {
	ch, err := m.wait(r.id)
	r.reply <- result[<-chan struct{}]{ch, err}
}

type killRequest struct {
	id     process.ID
	signal process.Signal
	reply  chan result[struct{}]
}

func (r killRequest) serve(m *Manager) {
	r.reply <- result[struct{}]{err: m.kill(r.id, r.signal)}
}

type killAllRequest struct {
	reply chan result[struct{}]
}

func (r killAllRequest) serve(m *Manager) {
	r.reply <- result[struct{}]{err: m.killAll()}
}

type listRequest struct {
	reply chan result[[]process.ID]
}

func (r listRequest) serve(m *Manager) {
	r.reply <- result[[]process.ID]{val: m.list()}
}

type muteRequest struct {
	id    process.ID
	muted bool
	reply chan result[struct{}]
}

func (r muteRequest) serve(m *Manager) {
	r.reply <- result[struct{}]{err: m.setMute(r.id, r.muted)}
}
