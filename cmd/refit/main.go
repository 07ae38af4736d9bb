package main

import (
	"context"
	"fmt"
	"os"

	"gitlab.com/tozd/go/errors"

	"refit/pkg/action"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailures    = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(os.Stderr, "%s: %s\n", cmd.Name(), err)
	switch {
	case errors.Is(err, action.ErrInterrupted):
		return exitInterrupted
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		return exitFailures
	}
}
