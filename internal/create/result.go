package create

import (
	"github.com/agentx-labs/create-agentx/internal/postsetup"
)

// State is a stage of a run.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateResolving
	StateMaterializing
	StatePostSetup
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateResolving:
		return "resolving"
	case StateMaterializing:
		return "materializing"
	case StatePostSetup:
		return "post-setup"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome tags the result of a run.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeValidationFailed
	OutcomeTemplateNotFound
	OutcomeWriteFailed
	OutcomePostSetupFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidationFailed:
		return "validation failed"
	case OutcomeTemplateNotFound:
		return "template not found"
	case OutcomeWriteFailed:
		return "write failed"
	case OutcomePostSetupFailed:
		return "post-setup failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Process exit codes, one per outcome.
const (
	ExitOK               = 0
	ExitUsage            = 1
	ExitValidationFailed = 2
	ExitTemplateNotFound = 3
	ExitWriteFailed      = 4
	ExitPostSetupFailed  = 5
	ExitCancelled        = 130
)

// ExitCode maps the outcome to a process exit code.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return ExitOK
	case OutcomeValidationFailed:
		return ExitValidationFailed
	case OutcomeTemplateNotFound:
		return ExitTemplateNotFound
	case OutcomeWriteFailed:
		return ExitWriteFailed
	case OutcomePostSetupFailed:
		return ExitPostSetupFailed
	case OutcomeCancelled:
		return ExitCancelled
	default:
		return ExitUsage
	}
}

// Result is the terminal artifact of a run.
type Result struct {
	Outcome Outcome
	// State is StateDone or StateFailed.
	State State
	// FailedIn is the stage that was active when the run failed.
	FailedIn State
	Err      error

	// TargetDir is the project directory on the run's filesystem.
	TargetDir string
	// Created reports whether the run created TargetDir.
	Created bool
	// Removed reports whether cleanup deleted TargetDir.
	Removed bool
	// CleanupErr is set when removing TargetDir failed.
	CleanupErr error

	Template       string
	Version        string
	PackageManager string

	// Path is the file or directory that failed to write (WriteFailed).
	Path string
	// Step is the post-setup step that failed (PostSetupFailed).
	Step string

	Files []string
	Steps []postsetup.StepResult
}

// OK reports whether the run reached Done.
func (r *Result) OK() bool { return r.Outcome == OutcomeSuccess }

// ExitCode maps the result to a process exit code.
func (r *Result) ExitCode() int { return r.Outcome.ExitCode() }
