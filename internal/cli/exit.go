package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/agentx-labs/create-agentx/internal/create"
	"github.com/agentx-labs/create-agentx/internal/prompt"
)

// ExitError carries a process exit code for a failed run.
type ExitError struct {
	Code int
	Err  error
	// Reported is set when the failure was already printed.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return create.ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
		return create.ExitCancelled
	}
	return create.ExitUsage
}
