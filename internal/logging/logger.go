package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is a leveled, tag-scoped logger. All loggers derived from the same
// root (via WithTag) share a single output mutex, so log lines from
// different goroutines never interleave.
type Logger struct {
	Level

	// Tag used to filter and classify log messages, e.g. "rtp", "h264".
	Tag string

	out io.Writer

	mu *sync.Mutex
}

// DefaultLogger writes to stderr at the level selected by LOGLEVEL.
var DefaultLogger = &Logger{defaultLevel, "", os.Stderr, new(sync.Mutex)}

// SetDestination overrides this logger's output.
func (log *Logger) SetDestination(out io.Writer) {
	log.out = out
}

// WithTag derives a new logger with the given tag, looking up its level from
// any LOGLEVEL directive that names it.
func (log *Logger) WithTag(tag string) *Logger {
	return &Logger{determineLevel(tag, log.Level), tag, log.out, log.mu}
}

// WithDefaultLevel derives a new logger whose level defaults to the given
// value, unless overridden by a LOGLEVEL directive for the same tag.
func (log *Logger) WithDefaultLevel(level Level) *Logger {
	return &Logger{determineLevel(log.Tag, level), log.Tag, log.out, log.mu}
}

// buffer is a []byte that implements io.Writer. Cheaper than bytes.Buffer for
// the append-only use here.
type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

func (b *buffer) writeByte(c byte) {
	*b = append(*b, c)
}

var bufPool = sync.Pool{
	New: func() interface{} {
		return make(buffer, 256)
	},
}

// Log writes a message at the given level, attributing it to the source
// location 'calldepth' frames up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if level > log.Level {
		return
	}

	buf := bufPool.Get().(buffer)
	defer bufPool.Put(buf[:0])

	buf.Write(level.color())

	buf = time.Now().AppendFormat(buf, timestampFormat)

	fmt.Fprintf(&buf, " %c/%s", level.letter(), log.Tag)

	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}
	fmt.Fprintf(&buf, "[%s:%d] %s", filepath.Base(file), line, ansiReset)

	fmt.Fprintf(&buf, format, a...)

	if n := len(format); n == 0 || format[n-1] != '\n' {
		buf.writeByte('\n')
	}

	log.mu.Lock()
	if _, err := log.out.Write(buf); err != nil {
		panic(fmt.Sprintf("failed to log to %v: %v", log.out, err))
	}
	log.mu.Unlock()
}

func (log *Logger) Error(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
}

func (log *Logger) Warn(format string, a ...interface{}) {
	log.Log(Warn, 1, format, a...)
}

func (log *Logger) Info(format string, a ...interface{}) {
	log.Log(Info, 1, format, a...)
}

func (log *Logger) Debug(format string, a ...interface{}) {
	log.Log(Debug, 1, format, a...)
}

func (log *Logger) Trace(n int, format string, a ...interface{}) {
	log.Log(Level(n), 1, format, a...)
}
