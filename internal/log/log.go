// Package log provides the leveled phase logging every pipeline package
// writes through. It wraps the standard log package with a
// hashicorp/logutils.LevelFilter: -v lowers the minimum level from INFO to
// DEBUG.
package log

import (
	"io"
	stdlog "log"
	"os"

	"github.com/hashicorp/logutils"
)

var filter = &logutils.LevelFilter{
	Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN"},
	MinLevel: logutils.LogLevel("INFO"),
	Writer:   os.Stderr,
}

func init() {
	stdlog.SetOutput(filter)
	stdlog.SetFlags(0)
}

// SetVerbose lowers the minimum log level to DEBUG (or restores INFO);
// interp.New calls this with Options.Verbose, which cmd/ariac fills from
// its -v flag.
func SetVerbose(v bool) {
	if v {
		filter.MinLevel = logutils.LogLevel("DEBUG")
	} else {
		filter.MinLevel = logutils.LogLevel("INFO")
	}
}

// SetOutput redirects where filtered log lines are written to, used by
// tests that want to assert on phase-log content instead of os.Stderr.
func SetOutput(w io.Writer) {
	filter.Writer = w
	stdlog.SetOutput(filter)
}

func Debugf(format string, args ...interface{}) { stdlog.Printf("[DEBUG] "+format, args...) }
func Infof(format string, args ...interface{})  { stdlog.Printf("[INFO] "+format, args...) }
func Warnf(format string, args ...interface{})  { stdlog.Printf("[WARN] "+format, args...) }

// Phase logs one pipeline phase's entry/exit phase table
// ("phase lexer: 412 tokens in 3.1ms").
func Phase(name string, detail string) {
	Infof("phase %s: %s", name, detail)
}
