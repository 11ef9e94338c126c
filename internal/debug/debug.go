// Package debug provides an opt-in diagnostic logger shared by the
// parser and the JIT. It is silent by default and only starts writing
// to stderr once Enable is called, so the normal run path produces no
// diagnostic output.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
)

var enabled = false

var logger = log.New(io.Discard, "", log.Lshortfile)

// Enable turns on diagnostic logging to stderr. The CLIs wire this to
// a -debug flag; tests leave it off.
func Enable() {
	enabled = true
	logger = log.New(os.Stderr, "", log.Lshortfile)
}

// Enabled reports whether diagnostic logging is currently on.
func Enabled() bool { return enabled }

// Logf writes a diagnostic line when logging is enabled; it is a
// no-op otherwise.
func Logf(format string, args ...interface{}) {
	logger.Output(2, fmt.Sprintf(format, args...))
}
