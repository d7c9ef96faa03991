// Package main is the entry point for the vitalis analyst. It collects one
// telemetry snapshot from the host and optionally sends it to a
// chat-completions endpoint for analysis.
package main

import (
	"errors"
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

// Exit codes.
const (
	exitOK             = 0
	exitFatal          = 1
	exitAnalysisFailed = 2
)

// exitCode carries a non-zero process exit status through cobra.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitOK
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	return exitFatal
}
