package weakref

// logging functions, ported from sipsp's log_common.go: a package-level
// slog.Log plus WARN/ERR/BUG shorthands. DBG is split out into
// log_debug.go / log_nodebug.go behind a build tag the same way.

import (
	"github.com/intuitivelabs/slog"
)

// BuildTags records which logging build tag (debug/nodebug) this binary
// was built with; appended to by log_debug.go / log_nodebug.go's init().
var BuildTags []string

// Log is the generic log for this package.
var Log slog.Log = slog.New(slog.LERR, slog.LbackTraceL|slog.LlocInfoL,
	slog.LStdErr)

// WARN is a shorthand for logging a warning message.
func WARN(f string, a ...interface{}) {
	Log.LLog(slog.LWARN, 1, "WARNING: weakref: ", f, a...)
}

// ERR is a shorthand for logging an error message.
func ERR(f string, a ...interface{}) {
	Log.LLog(slog.LERR, 1, "ERROR: weakref: ", f, a...)
}

// BUG is a shorthand for logging a bug message.
func BUG(f string, a ...interface{}) {
	Log.LLog(slog.LBUG, 1, "BUG: weakref: ", f, a...)
}
