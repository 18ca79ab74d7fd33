package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Run completed
	ExitDiscrepancy = 1 // Reconciliation found problems and --strict was set
	ExitError       = 2 // Configuration or runtime error
)

// DiscrepancyError reports that reconcile ran but the roster does not match.
type DiscrepancyError struct {
	Count int
}

func (e *DiscrepancyError) Error() string {
	return fmt.Sprintf("roster reconciliation found %d discrepancies", e.Count)
}

func main() {
	os.Exit(exitCode(execute()))
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(os.Stderr, err)

	var discrepancy *DiscrepancyError
	if errors.As(err, &discrepancy) {
		return ExitDiscrepancy
	}
	return ExitError
}
