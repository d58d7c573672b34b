package monitoring

import "log"

// Logf is the package-level diagnostic logger used by every exporter. It
// defaults to log.Printf but may be replaced by SetLogger so that a host
// simulation can route export messages into its own log.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf receives per-step detail (skipped steps, buffer sizes). It is muted
// unless SetVerbose(true) is called.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbose routes Debugf through the current Logf when on is true.
func SetVerbose(on bool) {
	if !on {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = func(format string, v ...interface{}) {
		Logf("[debug] "+format, v...)
	}
}
