package logging

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(level Level) (*Logger, *buffer) {
	buf := new(buffer)
	return &Logger{level, "test", buf, new(sync.Mutex)}, buf
}

func TestLoggerFiltersByLevel(t *testing.T) {
	log, buf := newTestLogger(Warn)
	log.Debug("should not appear")
	assert.Empty(t, string(*buf))

	log.Warn("should appear: %d", 42)
	require.NotEmpty(t, string(*buf))
	assert.True(t, strings.Contains(string(*buf), "should appear: 42"))
}

func TestLoggerIncludesTagAndLevelLetter(t *testing.T) {
	log, buf := newTestLogger(Info)
	log.Info("hello")
	s := string(*buf)
	assert.True(t, strings.Contains(s, "I/test"))
	assert.True(t, strings.Contains(s, "hello"))
}

func TestLoggerAppendsNewlineWhenMissing(t *testing.T) {
	log, buf := newTestLogger(Info)
	log.Info("no newline here")
	assert.True(t, strings.HasSuffix(string(*buf), "\n"))
}

func TestLoggerWithTagPreservesOutput(t *testing.T) {
	log, buf := newTestLogger(Info)
	tagged := log.WithTag("router")
	tagged.Info("from router")
	assert.True(t, strings.Contains(string(*buf), "router"))
}
