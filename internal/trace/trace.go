// Package trace provides the VM's leveled logging, in the shape of
// jacobin's trace/log packages: a small set of package-level functions
// writing to stderr, gated by a single level that the CLI sets once at
// startup.
package trace

import (
	"fmt"
	"os"
)

type Level int

const (
	ERROR Level = iota
	WARNING
	INFO
	TRACE
)

var currentLevel = WARNING

// SetLevel changes the minimum level that gets printed. Tests that want
// quiet output should call SetLevel(ERROR) the way jacobin's tests call
// log.SetLogLevel before exercising CLI/parsing paths.
func SetLevel(l Level) {
	currentLevel = l
}

func Error(msg string) {
	emit(ERROR, "ERROR", msg)
}

func Warning(msg string) {
	emit(WARNING, "WARNING", msg)
}

func Info(msg string) {
	emit(INFO, "INFO", msg)
}

func Trace(msg string) {
	emit(TRACE, "TRACE", msg)
}

func emit(l Level, tag, msg string) {
	if l > currentLevel {
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", tag, msg)
}
