package sculpto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger(&out, &errOut, "render", false)
	l.SetFlags(0)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String(), "debug output should be suppressed when debug is off")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	l.Infof("flushed %d draws", 3)
	l.Warnf("dropped light")
	l.Errorf("upload failed")

	assert.Contains(t, out.String(), "[render] DEBUG: shown 2")
	assert.Contains(t, out.String(), "[render] INFO: flushed 3 draws")
	assert.Contains(t, errOut.String(), "[render] WARN: dropped light")
	assert.Contains(t, errOut.String(), "[render] ERROR: upload failed")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&out, &out, "", false)
	l.SetFlags(0)
	l.Infof("hello")
	l.Errorf("bye")
	assert.Equal(t, "INFO: hello\nERROR: bye\n", out.String())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "Level(7)", Level(7).String())
}

func TestLoggerOrNop(t *testing.T) {
	l := LoggerOrNop(nil)
	if l == nil {
		t.Fatal("LoggerOrNop must never return nil")
	}
	assert.False(t, l.DebugEnabled())
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled(), "nop logger ignores SetDebug")

	d := NewDefaultLogger("x", true)
	assert.Same(t, d, LoggerOrNop(d))
}
