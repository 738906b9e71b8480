package config

import (
	"fmt"
	"os"
)

// Process exit codes used by commands.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// Exitf writes a formatted message to stderr and exits with code.
func Exitf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
