package create

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/agentx-labs/create-agentx/internal/postsetup"
	"github.com/agentx-labs/create-agentx/internal/projectname"
	"github.com/agentx-labs/create-agentx/internal/scaffold"
	"github.com/agentx-labs/create-agentx/internal/templates"
	"github.com/go-git/go-billy/v5"
)

// Request is the fully-resolved input of a run. Nothing in a run prompts;
// interactive callers fill the request first.
type Request struct {
	Name     string
	Template string
	// TargetDir defaults to the unscoped project name.
	TargetDir string
	Fields    scaffold.Fields
	Flags     scaffold.Flags
}

// Resolver maps a template identifier to its descriptor.
type Resolver interface {
	Resolve(id string) (*templates.Descriptor, error)
}

// Materializer writes a descriptor's files.
type Materializer interface {
	Materialize(ctx context.Context, d *templates.Descriptor, gen *scaffold.GenerationContext) (*scaffold.Result, error)
}

// StepRunner runs post-setup steps.
type StepRunner interface {
	Run(ctx context.Context, gen *scaffold.GenerationContext) ([]postsetup.StepResult, error)
	SetObserver(fn postsetup.Observer)
}

// Reporter observes a run. Implementations must not block for long.
type Reporter interface {
	StageStarted(state State)
	StepFinished(res postsetup.StepResult)
	Finished(res *Result)
}

// NopReporter ignores every event.
type NopReporter struct{}

func (NopReporter) StageStarted(State)                {}
func (NopReporter) StepFinished(postsetup.StepResult) {}
func (NopReporter) Finished(*Result)                  {}

// Orchestrator runs the scaffolding pipeline.
type Orchestrator struct {
	fs           billy.Filesystem
	resolver     Resolver
	materializer Materializer
	steps        StepRunner
	reporter     Reporter
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides the time source used for the {{year}} token.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator. fsys must be the filesystem the materializer
// and steps write to.
func New(fsys billy.Filesystem, resolver Resolver, materializer Materializer, steps StepRunner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fs:           fsys,
		resolver:     resolver,
		materializer: materializer,
		steps:        steps,
		reporter:     NopReporter{},
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.steps.SetObserver(o.reporter.StepFinished)
	return o
}

// run holds the mutable state of one invocation.
type run struct {
	o      *Orchestrator
	state  State
	target *target
	result *Result
}

// Run executes req. It never returns nil; failures are reported through
// Result.Outcome and Result.Err.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Result {
	r := &run{o: o, state: StateIdle, result: &Result{Template: req.Template}}
	res := r.execute(ctx, req)
	o.reporter.Finished(res)
	return res
}

func (r *run) execute(ctx context.Context, req Request) *Result {
	o := r.o

	// Validating
	if err := r.enter(ctx, StateValidating); err != nil {
		return r.fail(OutcomeCancelled, err)
	}
	name, err := projectname.Parse(req.Name)
	if err != nil {
		return r.fail(OutcomeValidationFailed, err)
	}
	o.logger.Debug("validated name", "name", name.String(), "scope", name.Scope(), "dir", name.Base())
	gen, err := scaffold.NewGenerationContext(name, req.TargetDir, req.Fields, req.Flags, o.now())
	if err != nil {
		return r.fail(OutcomeValidationFailed, err)
	}
	gen.OSDir = filepath.Join(o.fs.Root(), gen.TargetDir)
	r.result.TargetDir = gen.TargetDir
	r.result.PackageManager = gen.Flags.PackageManager
	r.target = &target{fs: o.fs, dir: gen.TargetDir}

	status, err := InspectTarget(o.fs, gen.TargetDir)
	if err != nil {
		return r.fail(OutcomeValidationFailed, err)
	}
	if status == TargetOccupied && !gen.Flags.Overwrite {
		return r.fail(OutcomeValidationFailed, fmt.Errorf("%s: %w", gen.TargetDir, ErrTargetNotEmpty))
	}

	// Resolving
	if err := r.enter(ctx, StateResolving); err != nil {
		return r.fail(OutcomeCancelled, err)
	}
	d, err := o.resolver.Resolve(req.Template)
	if err != nil {
		return r.fail(OutcomeTemplateNotFound, err)
	}
	o.logger.Debug("resolved template", "id", d.ID, "source", d.Source, "files", d.Paths())
	r.result.Template = d.ID
	if d.Version != nil {
		r.result.Version = d.Version.String()
	}

	// Materializing
	if err := r.enter(ctx, StateMaterializing); err != nil {
		return r.fail(OutcomeCancelled, err)
	}
	if err := r.target.claim(gen.Flags.Overwrite); err != nil {
		if errors.Is(err, ErrTargetNotEmpty) {
			return r.fail(OutcomeValidationFailed, err)
		}
		r.result.Path = gen.TargetDir
		return r.fail(OutcomeWriteFailed, &scaffold.WriteError{Path: gen.TargetDir, Err: err})
	}
	r.result.Created = r.target.created

	written, err := o.materializer.Materialize(ctx, d, gen)
	if written != nil {
		r.result.Files = written.Files
	}
	if rerr := r.target.release(); rerr != nil && err == nil {
		err = &scaffold.WriteError{Path: r.target.lockPath(), Err: rerr}
	}
	if err != nil {
		if isCancellation(ctx, err) {
			return r.fail(OutcomeCancelled, err)
		}
		var we *scaffold.WriteError
		if errors.As(err, &we) {
			r.result.Path = we.Path
		}
		return r.fail(OutcomeWriteFailed, err)
	}

	// PostSetup
	if err := r.enter(ctx, StatePostSetup); err != nil {
		return r.fail(OutcomeCancelled, err)
	}
	steps, err := o.steps.Run(ctx, gen)
	r.result.Steps = steps
	if err != nil {
		if isCancellation(ctx, err) {
			return r.fail(OutcomeCancelled, err)
		}
		var se *postsetup.StepError
		if errors.As(err, &se) {
			r.result.Step = se.Step
		}
		return r.fail(OutcomePostSetupFailed, err)
	}

	r.state = StateDone
	r.result.State = StateDone
	r.result.Outcome = OutcomeSuccess
	o.logger.Debug("run finished", "dir", gen.TargetDir, "files", len(r.result.Files))
	return r.result
}

// enter moves to state, first honoring cancellation.
func (r *run) enter(ctx context.Context, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.o.logger.Debug("stage", "from", r.state.String(), "to", state.String())
	r.state = state
	r.o.reporter.StageStarted(state)
	return nil
}

// fail records the failure and applies the cleanup policy: a directory this
// run created is removed unless post-setup had already started.
func (r *run) fail(outcome Outcome, err error) *Result {
	res := r.result
	res.Outcome = outcome
	res.Err = err
	res.FailedIn = r.state
	res.State = StateFailed

	r.o.logger.Debug("run failed", "stage", r.state.String(), "outcome", outcome.String(), "error", err)

	if r.target != nil {
		if lerr := r.target.release(); lerr != nil {
			r.o.logger.Debug("releasing lock failed", "dir", r.target.dir, "error", lerr)
		}
	}
	if r.target != nil && r.state != StatePostSetup {
		removed, cerr := r.target.cleanup()
		res.Removed = removed
		res.CleanupErr = cerr
		if cerr != nil {
			r.o.logger.Debug("cleanup failed", "dir", r.target.dir, "error", cerr)
		}
	}

	r.state = StateFailed
	return res
}

// isCancellation reports whether err surfaced because ctx was cancelled. A
// killed child process reports its own exit status, so the context decides.
func isCancellation(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}
