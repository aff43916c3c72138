package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldUseColor(t *testing.T) {
	t.Run("NO_COLOR wins", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		t.Setenv("CLICOLOR_FORCE", "1")
		assert.False(t, ShouldUseColor())
	})
	t.Run("CLICOLOR=0", func(t *testing.T) {
		t.Setenv("CLICOLOR", "0")
		t.Setenv("CLICOLOR_FORCE", "1")
		assert.False(t, ShouldUseColor())
	})
	t.Run("CLICOLOR_FORCE", func(t *testing.T) {
		t.Setenv("CLICOLOR", "1")
		t.Setenv("CLICOLOR_FORCE", "1")
		assert.True(t, ShouldUseColor())
	})
}

func TestLogWritesPrefixedLines(t *testing.T) {
	var out, errOut bytes.Buffer
	restore := SetOutput(&out, &errOut)
	defer restore()

	Log("Started %s", "[0]: sleep 5")
	LogErr("Failed %d", 2)
	Println("plain")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.Contains(t, lines[0], "[+]")
		assert.True(t, strings.HasSuffix(lines[0], " Started [0]: sleep 5"))
		assert.Equal(t, "plain", lines[1])
	}
	assert.Contains(t, errOut.String(), "[!]")
	assert.True(t, strings.HasSuffix(errOut.String(), " Failed 2\n"))
}

func TestEmptySelections(t *testing.T) {
	var p HuhPrompter

	_, err := p.SelectOne("pick", nil)
	assert.ErrorIs(t, err, ErrCanceled)

	picked, err := p.SelectMany("pick", nil)
	assert.NoError(t, err)
	assert.Empty(t, picked)
}
