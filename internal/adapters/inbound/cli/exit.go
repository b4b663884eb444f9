package cli

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFindings = 1 // at least one error finding
	ExitUsage    = 2 // bad flags or setup failure outside a run
)

// ExitError carries a process exit code through cobra's RunE. An empty
// Message means the command already reported everything on stdout.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit with code %d", e.Code)
	}
	return e.Message
}

func usageErrorf(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps a command error to a process exit code. Errors that are
// not an ExitError are usage or setup failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsage
}

// Silent reports whether err needs no message on stderr.
func Silent(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Message == ""
}
