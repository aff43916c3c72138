package kb

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixpare/together/internal/config"
	"github.com/nixpare/together/internal/terminal"
	"github.com/nixpare/together/manager"
	"github.com/nixpare/together/process"
)

func TestMain(m *testing.M) {
	restore := terminal.SetOutput(io.Discard, io.Discard)
	code := m.Run()
	restore()
	os.Exit(code)
}

type call struct {
	op      string
	command string
	id      process.ID
	signal  process.Signal
}

// fakeSupervisor records requests and keeps a table like the manager
type fakeSupervisor struct {
	next    uint32
	running []process.ID
	calls   []call
	closed  bool
}

func (f *fakeSupervisor) Spawn(command string) (process.ID, error) {
	if f.closed {
		return process.ID{}, manager.ErrClosed
	}
	id := process.NewID(f.next, command)
	f.next++
	f.running = append(f.running, id)
	f.calls = append(f.calls, call{op: "spawn", command: command, id: id})
	return id, nil
}

func (f *fakeSupervisor) remove(id process.ID) bool {
	for i, r := range f.running {
		if r == id {
			f.running = append(f.running[:i], f.running[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeSupervisor) Kill(id process.ID) error {
	return f.KillAdvanced(id, process.SIGINT)
}

func (f *fakeSupervisor) KillAdvanced(id process.ID, sig process.Signal) error {
	if !f.remove(id) {
		return manager.ErrNoSuchProcess
	}
	f.calls = append(f.calls, call{op: "kill", id: id, signal: sig})
	return nil
}

func (f *fakeSupervisor) KillAll() error {
	f.calls = append(f.calls, call{op: "killall"})
	f.running = nil
	f.closed = true
	return nil
}

func (f *fakeSupervisor) List() ([]process.ID, error) {
	if f.closed {
		return nil, manager.ErrClosed
	}
	return append([]process.ID(nil), f.running...), nil
}

func (f *fakeSupervisor) SetMute(id process.ID, muted bool) error {
	op := "unmute"
	if muted {
		op = "mute"
	}
	f.calls = append(f.calls, call{op: op, id: id})
	return nil
}

func (f *fakeSupervisor) Restart(id process.ID, command string) (process.ID, error) {
	if err := f.Kill(id); err != nil {
		return process.ID{}, err
	}
	return f.Spawn(command)
}

func (f *fakeSupervisor) ops() []string {
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.op
	}
	return ops
}

// scriptedPrompter answers prompts from a queue of picks
type scriptedPrompter struct {
	one     []int
	many    [][]int
	prompts []string
}

func (p *scriptedPrompter) SelectOne(prompt string, items []string) (int, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.one) == 0 {
		return 0, terminal.ErrCanceled
	}
	i := p.one[0]
	p.one = p.one[1:]
	return i, nil
}

func (p *scriptedPrompter) SelectMany(prompt string, items []string) ([]int, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.many) == 0 {
		return nil, terminal.ErrCanceled
	}
	picks := p.many[0]
	p.many = p.many[1:]
	return picks, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Run: config.RunOptions{
			Commands: []config.Command{
				{Command: "web", Recipes: []string{"frontend"}},
				{Command: "api", Recipes: []string{"backend", "frontend"}},
				{Command: "db", Recipes: []string{"backend"}},
			},
		},
	}
}

func run(t *testing.T, sup *fakeSupervisor, p *scriptedPrompter, input string) *Loop {
	t.Helper()
	l := New(sup, p, testConfig(), WithOutput(io.Discard))
	require.NoError(t, l.Run(strings.NewReader(input)))
	return l
}

func TestQuitNeedsTwoPresses(t *testing.T) {
	sup := &fakeSupervisor{}
	run(t, sup, &scriptedPrompter{}, "q\nl\nq\n")
	assert.Empty(t, sup.calls)

	run(t, sup, &scriptedPrompter{}, "q\nq\nl\n")
	assert.Equal(t, []string{"killall"}, sup.ops())
}

func TestTriggerAndRetrigger(t *testing.T) {
	sup := &fakeSupervisor{}
	l := run(t, sup, &scriptedPrompter{one: []int{2}}, "t\n.\n.\n")

	assert.Equal(t, "db", l.lastCommand)
	require.Len(t, sup.running, 3)
	for _, id := range sup.running {
		assert.Equal(t, "db", id.Command)
	}
}

func TestRetriggerWithoutHistory(t *testing.T) {
	sup := &fakeSupervisor{}
	run(t, sup, &scriptedPrompter{}, ".\n")
	assert.Empty(t, sup.calls)
}

func TestKillPicksFromRunning(t *testing.T) {
	sup := &fakeSupervisor{}
	_, _ = sup.Spawn("web")
	api, _ := sup.Spawn("api")

	run(t, sup, &scriptedPrompter{one: []int{1}}, "k\n")

	last := sup.calls[len(sup.calls)-1]
	assert.Equal(t, call{op: "kill", id: api, signal: process.SIGINT}, last)
	assert.Len(t, sup.running, 1)
}

func TestKillWithSignal(t *testing.T) {
	sup := &fakeSupervisor{}
	web, _ := sup.Spawn("web")

	run(t, sup, &scriptedPrompter{one: []int{0, 2}}, "K\n")

	last := sup.calls[len(sup.calls)-1]
	assert.Equal(t, call{op: "kill", id: web, signal: process.SIGKILL}, last)
}

func TestCanceledPromptDoesNothing(t *testing.T) {
	sup := &fakeSupervisor{}
	_, _ = sup.Spawn("web")

	run(t, sup, &scriptedPrompter{}, "k\nr\nt\nb\n")
	assert.Equal(t, []string{"spawn"}, sup.ops())
}

func TestKillWithNothingRunning(t *testing.T) {
	p := &scriptedPrompter{one: []int{0}}
	run(t, &fakeSupervisor{}, p, "k\n")
	assert.Empty(t, p.prompts)
}

func TestRestartGetsNewID(t *testing.T) {
	sup := &fakeSupervisor{}
	old, _ := sup.Spawn("web")

	run(t, sup, &scriptedPrompter{one: []int{0}}, "r\n")

	require.Len(t, sup.running, 1)
	assert.Equal(t, "web", sup.running[0].Command)
	assert.NotEqual(t, old, sup.running[0])
}

func TestBatchByRecipes(t *testing.T) {
	sup := &fakeSupervisor{}
	run(t, sup, &scriptedPrompter{many: [][]int{{1}}}, "b\n")

	var commands []string
	for _, id := range sup.running {
		commands = append(commands, id.Command)
	}
	assert.Equal(t, []string{"api", "db"}, commands)
}

func TestSwitchRecipe(t *testing.T) {
	sup := &fakeSupervisor{}
	web, _ := sup.Spawn("web")
	api, _ := sup.Spawn("api")

	// recipes in order of appearance: frontend, backend
	run(t, sup, &scriptedPrompter{one: []int{1}}, "z\n")

	require.Len(t, sup.running, 2)
	assert.Equal(t, api, sup.running[0])
	assert.Equal(t, "db", sup.running[1].Command)
	assert.NotContains(t, sup.running, web)
}

func TestMuteAndUnmute(t *testing.T) {
	sup := &fakeSupervisor{}
	web, _ := sup.Spawn("web")

	run(t, sup, &scriptedPrompter{one: []int{0, 0}}, "m\nu\n")

	assert.Equal(t, []call{
		{op: "spawn", command: "web", id: web},
		{op: "mute", id: web},
		{op: "unmute", id: web},
	}, sup.calls)
}

func TestDumpIncludesRunning(t *testing.T) {
	sup := &fakeSupervisor{}
	_, _ = sup.Spawn("db")

	var out bytes.Buffer
	l := New(sup, &scriptedPrompter{}, testConfig(), WithOutput(&out))
	require.NoError(t, l.Run(strings.NewReader("d\n")))

	assert.Contains(t, out.String(), "running = [2]")
}

func TestHelpAndListShowProcesses(t *testing.T) {
	var out bytes.Buffer
	restore := terminal.SetOutput(&out, io.Discard)
	defer restore()

	sup := &fakeSupervisor{}
	_, _ = sup.Spawn("web")
	run(t, sup, &scriptedPrompter{}, "h\nl\n")

	assert.Contains(t, out.String(), "together is running 1 commands in parallel:")
	assert.Contains(t, out.String(), "[0]: web")
}

func TestUnknownKeyAndBlankLines(t *testing.T) {
	var errOut bytes.Buffer
	restore := terminal.SetOutput(io.Discard, &errOut)
	defer restore()

	sup := &fakeSupervisor{}
	run(t, sup, &scriptedPrompter{}, "\n   \nx\n")

	assert.Contains(t, errOut.String(), "Unknown command: 'x'")
	assert.Empty(t, sup.calls)
}

func TestClosedManagerEndsLoop(t *testing.T) {
	sup := &fakeSupervisor{closed: true}
	p := &scriptedPrompter{one: []int{0}}
	run(t, sup, p, "l\nt\n")
	assert.Empty(t, p.prompts)
}

func TestPromptKeysWithoutTerminal(t *testing.T) {
	var errOut bytes.Buffer
	restore := terminal.SetOutput(io.Discard, &errOut)
	defer restore()

	sup := &fakeSupervisor{}
	_, _ = sup.Spawn("web")

	l := New(sup, nil, testConfig(), WithOutput(io.Discard))
	require.NoError(t, l.Run(strings.NewReader("k\nt\nb\nl\n")))

	assert.Equal(t, []string{"spawn"}, sup.ops())
	assert.Equal(t, 3, strings.Count(errOut.String(), ErrNoTerminal.Error()))
}
