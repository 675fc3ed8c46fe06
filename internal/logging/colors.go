package logging

import (
	"fmt"

	"github.com/fatih/color"
)

// Per-level SGR attribute, used to prefix each log line so levels are
// visually distinguishable on a terminal. The escape sequence is built from
// fatih/color's Attribute constants rather than hand-picked codes.
var levelAttribute = map[Level][]color.Attribute{
	Error: {color.FgRed, color.Bold},
	Warn:  {color.FgYellow, color.Bold},
	Info:  {color.FgGreen},
	Debug: {color.FgCyan},
}

var ansiReset = []byte(fmt.Sprintf("\033[%dm", color.Reset))

// color returns the byte-slice escape sequence used to prefix a log line at
// this level.
func (l Level) color() []byte {
	attrs, ok := levelAttribute[l]
	if !ok {
		// Trace levels share the "white" default.
		attrs = []color.Attribute{color.FgWhite}
	}

	seq := make([]byte, 0, 8*len(attrs))
	for _, a := range attrs {
		seq = append(seq, []byte(fmt.Sprintf("\033[%dm", a))...)
	}
	return seq
}
