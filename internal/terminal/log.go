package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	logStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

var (
	mu     sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects the log lines, mostly for tests. The returned
// function restores the previous writers.
func SetOutput(out, errOut io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()

	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	return func() {
		mu.Lock()
		defer mu.Unlock()
		stdout, stderr = prevOut, prevErr
	}
}

// Log prints a progress line with a green "[+]" prefix to stdout
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(stdout, "%s %s\n", logStyle.Render("[+]"), fmt.Sprintf(format, args...))
}

// LogErr prints an error line with a red "[!]" prefix to stderr
func LogErr(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(stderr, "%s %s\n", errStyle.Render("[!]"), fmt.Sprintf(format, args...))
}

// Println prints a plain line to the log output
func Println(args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(stdout, args...)
}

// Printf prints plain formatted text to the log output
func Printf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(stdout, format, args...)
}
