// Package logger provides leveled logging for parase.
// Debug and info messages are printed only in verbose mode; warnings and
// errors are always printed. Level prefixes are colorized when the output
// is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr

	debugPrefix = color.New(color.FgHiBlack).SprintFunc()
	infoPrefix  = color.New(color.FgBlue).SprintFunc()
	warnPrefix  = color.New(color.FgYellow).SprintFunc()
	errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
)

// SetVerbose enables or disables debug and info output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the writer used for log lines. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func Debug(format string, args ...any) {
	logf(true, debugPrefix("[DEBUG]"), format, args...)
}

func Info(format string, args ...any) {
	logf(true, infoPrefix("[INFO]"), format, args...)
}

func Warn(format string, args ...any) {
	logf(false, warnPrefix("[WARN]"), format, args...)
}

func Error(format string, args ...any) {
	logf(false, errorPrefix("[ERROR]"), format, args...)
}

func logf(verboseOnly bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verboseOnly && !verbose {
		return
	}
	fmt.Fprintf(output, prefix+" "+format+"\n", args...)
}
