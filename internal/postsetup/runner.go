package postsetup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentx-labs/create-agentx/internal/scaffold"
)

// Step names.
const (
	StepInstall = "install"
	StepGit     = "git"
)

// Status is the outcome of a single step.
type Status int

const (
	StatusSuccess Status = iota
	// StatusSkipped means the step was intentionally not run.
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepResult records what happened to one step.
type StepResult struct {
	Step     string
	Status   Status
	Reason   string // why a step was skipped
	Err      error
	Duration time.Duration
}

// StepError is returned by Run when a step fails.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Step is one post-generation action.
type Step interface {
	Name() string
	// Skip reports whether the step should not run for gen, and why.
	Skip(gen *scaffold.GenerationContext) (bool, string)
	Run(ctx context.Context, gen *scaffold.GenerationContext) error
}

// Observer is notified after each step finishes. It may be nil.
type Observer func(StepResult)

// Runner executes steps in order.
type Runner struct {
	steps    []Step
	logger   *slog.Logger
	observer Observer
}

// NewRunner creates a Runner for steps, executed in the given order.
func NewRunner(logger *slog.Logger, steps ...Step) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{steps: steps, logger: logger}
}

// SetObserver registers fn to receive each StepResult as it is produced.
func (r *Runner) SetObserver(fn Observer) {
	r.observer = fn
}

// Run executes the steps against gen. It returns the result of every step
// reached; on failure the last result is the failed step and the error is a
// *StepError. Cancellation is checked before each step.
func (r *Runner) Run(ctx context.Context, gen *scaffold.GenerationContext) ([]StepResult, error) {
	results := make([]StepResult, 0, len(r.steps))

	for _, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if skip, reason := step.Skip(gen); skip {
			r.logger.Debug("step skipped", "step", step.Name(), "reason", reason)
			results = r.record(results, StepResult{Step: step.Name(), Status: StatusSkipped, Reason: reason})
			continue
		}

		r.logger.Debug("step started", "step", step.Name(), "dir", gen.TargetDir)
		start := time.Now()
		err := step.Run(ctx, gen)
		elapsed := time.Since(start)

		if err != nil {
			r.logger.Debug("step failed", "step", step.Name(), "error", err, "duration", elapsed)
			results = r.record(results, StepResult{Step: step.Name(), Status: StatusFailed, Err: err, Duration: elapsed})
			return results, &StepError{Step: step.Name(), Err: err}
		}

		r.logger.Debug("step finished", "step", step.Name(), "duration", elapsed)
		results = r.record(results, StepResult{Step: step.Name(), Status: StatusSuccess, Duration: elapsed})
	}

	return results, nil
}

func (r *Runner) record(results []StepResult, res StepResult) []StepResult {
	if r.observer != nil {
		r.observer(res)
	}
	return append(results, res)
}
