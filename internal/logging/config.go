package logging

import (
	"fmt"
	"os"
	"strings"
)

const envVar = "LOGLEVEL"

var defaultLevel = Info

var tagLevels []struct {
	tag   string
	level Level
}

func init() {
	// LOGLEVEL is a comma-separated list of "tag=level" directives. A
	// directive with no "tag=" prefix sets the default level instead.
	for _, d := range strings.Split(os.Getenv(envVar), ",") {
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		levelString := v[len(v)-1]
		level, err := parseLevel(levelString)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid %s directive %q: %s\n", envVar, d, err)
			continue
		}
		if len(v) == 1 {
			defaultLevel = level
		} else {
			tagLevels = append(tagLevels, struct {
				tag   string
				level Level
			}{v[0], level})
		}
	}

	DefaultLogger.Level = defaultLevel
}

func determineLevel(tag string, fallback Level) Level {
	for _, e := range tagLevels {
		if e.tag == tag {
			return e.level
		}
	}
	return fallback
}
