package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in   string
		want Signal
	}{
		{"INT", SIGINT},
		{"sigint", SIGINT},
		{"2", SIGINT},
		{"TERM", SIGTERM},
		{" SIGTERM ", SIGTERM},
		{"15", SIGTERM},
		{"kill", SIGKILL},
		{"9", SIGKILL},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSignal("HUP")
	assert.Error(t, err)
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "SIGINT", SIGINT.String())
	assert.Equal(t, "SIGKILL", SIGKILL.String())
	assert.Equal(t, "Signal(42)", Signal(42).String())
	assert.Equal(t, []Signal{SIGINT, SIGTERM, SIGKILL}, Signals())
}

func TestIDString(t *testing.T) {
	id := NewID(3, "npm run dev")
	assert.Equal(t, "[3]: npm run dev", id.String())
	assert.Equal(t, id, ID{Seq: 3, Command: "npm run dev"})
	assert.NotEqual(t, id, NewID(4, "npm run dev"))
}

func TestFormatLine(t *testing.T) {
	id := NewID(12, "x")
	assert.Equal(t, "12: hello\n", formatLine(id, "hello\n"))
	assert.Equal(t, "12: no newline\n", formatLine(id, "no newline"))
	assert.Equal(t, "12: �\n", formatLine(id, "\xff\n"))
}

func TestStdioFromRaw(t *testing.T) {
	assert.Equal(t, Raw, StdioFromRaw(true))
	assert.Equal(t, Piped, StdioFromRaw(false))
	assert.Equal(t, "stderr-only", StderrOnly.String())
}
