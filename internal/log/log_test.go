package log

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetVerboseControlsDebugVisibility(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	SetVerbose(false)
	buf.Reset()
	Debugf("hidden %d", 1)
	assert.Empty(t, strings.TrimSpace(buf.String()))

	SetVerbose(true)
	buf.Reset()
	Debugf("shown %d", 1)
	assert.Contains(t, buf.String(), "shown 1")
}

func TestPhaseLogsAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)
	buf.Reset()

	Phase("lexer", "42 tokens in 1ms")
	assert.Contains(t, buf.String(), "phase lexer: 42 tokens in 1ms")
}
