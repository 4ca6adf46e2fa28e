package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"ownergen/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// errDrift signals a failed check. The report is already printed.
var errDrift = stderrors.New("CODEOWNERS is out of date")

// exitCode prints err and returns the process exit status.
func exitCode(err error) int {
	if stderrors.Is(err, errDrift) {
		return 1
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var e *errors.Error
	if stderrors.As(err, &e) {
		for _, fix := range e.SuggestedFixes {
			if fix.Command != "" {
				fmt.Fprintf(os.Stderr, "  hint: %s (%s)\n", fix.Command, fix.Description)
			}
		}
	}
	return 1
}
