package monitoring

import (
	"fmt"
	"log"
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

// Channelf logs a message tagged with the channel (or channel pair) it concerns.
// Batch runners use it at the channel-iteration boundary so that every failure
// or fit diagnostic can be traced back to its channel id.
func Channelf(channel string, format string, v ...interface{}) {
	Logf("[%s] %s", channel, fmt.Sprintf(format, v...))
}
