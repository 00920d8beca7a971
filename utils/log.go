package utils

import (
	"io"
	"log"
	"os"
)

// Verbose controls whether progress lines and timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where progress and statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Logger returns a logger writing to Output.
func Logger() *log.Logger {
	return log.New(Output, "", log.LstdFlags)
}

// Logf prints a timestamped line when Verbose is set.
func Logf(format string, args ...any) {
	if !Verbose {
		return
	}
	Logger().Printf(format, args...)
}
