package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nixpare/together/internal/terminal"
)

// muteCheckInterval is how often a held back stdout line checks
// whether the process was unmuted
const muteCheckInterval = 100 * time.Millisecond

// ForwardStdio starts copying the captured output of the child to
// stdout and stderr, prefixing each line with the sequence number of
// id. It takes ownership of the pipes, so only the first call
// forwards anything. The returned channel is closed once both streams
// reached end of file or failed.
//
// Lines of the same stream keep their order. Lines of different
// streams and different processes interleave freely.
func (p *Process) ForwardStdio(id ID, stdout, stderr io.Writer) <-chan struct{} {
	done := make(chan struct{})

	outPipe, errPipe := p.stdout, p.stderr
	p.stdout, p.stderr = nil, nil
	if outPipe == nil && errPipe == nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		var g errgroup.Group
		if outPipe != nil {
			g.Go(func() error {
				return pipeLines(id, outPipe, stdout, p.waitUnmuted, "stdout")
			})
		}
		if errPipe != nil {
			g.Go(func() error {
				return pipeLines(id, errPipe, stderr, nil, "stderr")
			})
		}

		if err := g.Wait(); err != nil {
			terminal.LogErr("Failed to forward output of %s: %v", id, err)
		}
	}()

	return done
}

// waitUnmuted blocks while the mute flag is set and reports whether
// the line may be written. After Release a muted line is dropped.
func (p *Process) waitUnmuted() bool {
	for p.muted.Load() {
		if p.released.Load() {
			return false
		}
		time.Sleep(muteCheckInterval)
	}
	return true
}

// pipeLines reads r line by line and writes every line to w with the
// "{seq}: " prefix. hold, when not nil, is called before each line is
// written and the line is skipped when it returns false.
func pipeLines(id ID, r *os.File, w io.Writer, hold func() bool, pipeID string) error {
	defer r.Close()

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if hold == nil || hold() {
				if _, werr := io.WriteString(w, formatLine(id, line)); werr != nil {
					// keep draining so the child never blocks on a full pipe
					w = io.Discard
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("broken %s pipe: %w", pipeID, err)
		}
	}
}

// formatLine labels one line of output. A final line without a
// trailing newline gets one, so the next label starts a new line.
func formatLine(id ID, line string) string {
	line = strings.ToValidUTF8(line, "\uFFFD")

	var b strings.Builder
	b.Grow(len(line) + 12)
	b.WriteString(strconv.FormatUint(uint64(id.Seq), 10))
	b.WriteString(": ")
	b.WriteString(line)
	if !strings.HasSuffix(line, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}
