// Package monitoring holds the diagnostic logger shared by the selection
// worker, RPC server and tools.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Component returns a logger that prefixes messages with "[name] ". The
// package logger is looked up on every call, so SetLogger applies to
// component loggers created earlier.
func Component(name string) func(format string, v ...interface{}) {
	prefix := "[" + name + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}

// SlowCall logs op through logf when elapsed exceeds threshold. A zero
// threshold disables logging.
func SlowCall(logf func(format string, v ...interface{}), op string, elapsed, threshold time.Duration) {
	if threshold <= 0 || elapsed < threshold {
		return
	}
	logf("slow %s: took %v (threshold %v)", op, elapsed, threshold)
}
