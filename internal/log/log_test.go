package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	buf := capture(t, LevelInfo)

	Debug("hidden", "k", 1)
	Info("shown", "k", 2)
	Error("failed", errors.New("boom"), "k", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] shown k=2")
	assert.Contains(t, out, "[ERROR] failed err=boom k=3")

	buf.Reset()
	SetLevel(LevelError)
	Info("quiet")
	assert.Empty(t, buf.String())

	SetLevel(LevelDebug)
	Debug("loud")
	assert.Contains(t, buf.String(), "[DEBUG] loud")
}

func TestKeyValueFormatting(t *testing.T) {
	buf := capture(t, LevelInfo)

	Info("msg", "elements", "YR=2023,MH=8", "note", "two words", 42, "skipped", "odd")

	out := buf.String()
	assert.Contains(t, out, `elements="YR=2023,MH=8"`)
	assert.Contains(t, out, `note="two words"`)
	assert.NotContains(t, out, "skipped")
	assert.NotContains(t, out, "odd")
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, LevelDebug, l)

	l, ok = ParseLevel(" Error ")
	assert.True(t, ok)
	assert.Equal(t, LevelError, l)

	l, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, LevelInfo, l)
}
