package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/agentx-labs/create-agentx/internal/branding"
	"github.com/agentx-labs/create-agentx/internal/create"
	"github.com/agentx-labs/create-agentx/internal/postsetup"
)

// Reporter prints progress to out and failure summaries to errOut.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	cwd    string
	styles Styles
	errSty Styles
}

// NewReporter creates a Reporter. Paths under cwd are shown relative to it.
func NewReporter(out, errOut io.Writer, cwd string) *Reporter {
	return &Reporter{out: out, errOut: errOut, cwd: cwd, styles: NewStyles(out), errSty: NewStyles(errOut)}
}

var stageLabels = map[create.State]string{
	create.StateValidating:    "Checking project name",
	create.StateResolving:     "Resolving template",
	create.StateMaterializing: "Writing files",
	create.StatePostSetup:     "Running post-setup steps",
}

func (r *Reporter) StageStarted(state create.State) {
	label, ok := stageLabels[state]
	if !ok {
		return
	}
	fmt.Fprintln(r.out, r.styles.Subtle.Render("› "+label))
}

func (r *Reporter) StepFinished(res postsetup.StepResult) {
	fmt.Fprintln(r.out, "  "+r.stepLine(res))
}

func (r *Reporter) stepLine(res postsetup.StepResult) string {
	switch res.Status {
	case postsetup.StatusSuccess:
		return r.styles.Success.Render("✓") + " " + res.Step + " " +
			r.styles.Subtle.Render("("+res.Duration.Round(time.Millisecond).String()+")")
	case postsetup.StatusSkipped:
		return r.styles.Subtle.Render("- " + res.Step + " skipped: " + res.Reason)
	default:
		return r.styles.Error.Render("✗") + " " + res.Step + " failed"
	}
}

func (r *Reporter) Finished(res *create.Result) {
	dir := RelDir(r.cwd, res.TargetDir)
	if res.OK() {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.styles.Success.Render("Created "+dir)+
			r.styles.Subtle.Render(fmt.Sprintf(" from %s@%s", res.Template, res.Version)))
		if steps := NextSteps(res, dir); len(steps) > 0 {
			fmt.Fprintln(r.out)
			fmt.Fprintln(r.out, r.styles.Title.Render("Next steps:"))
			for i, s := range steps {
				fmt.Fprintf(r.out, "  %d. %s\n", i+1, r.styles.Accent.Render(s))
			}
		}
		return
	}

	lines := failureSummary(res, dir)
	fmt.Fprintln(r.errOut)
	fmt.Fprintln(r.errOut, r.errSty.Error.Render(lines[0].text))
	for _, l := range lines[1:] {
		text := l.text
		if l.warn {
			text = r.errSty.Warning.Render(text)
		}
		fmt.Fprintln(r.errOut, "  "+text)
	}
}

// NextSteps lists the commands to run after a successful run. dir is the
// project directory as the user should type it.
func NextSteps(res *create.Result, dir string) []string {
	pm := res.PackageManager
	if pm == "" {
		pm = postsetup.DefaultPackageManager
	}

	steps := []string{"cd " + dir}
	switch {
	case slices.Contains(res.Files, "package.json"):
		if !stepSucceeded(res, postsetup.StepInstall) {
			steps = append(steps, pm+" install")
		}
		steps = append(steps, pm+" start")
	case slices.Contains(res.Files, "go.mod"):
		steps = append(steps, "go build ./...")
	}
	return steps
}

// FailureSummary explains which stage failed, why, and what happened to the
// target directory. The first line is the headline.
func FailureSummary(res *create.Result, dir string) []string {
	lines := failureSummary(res, dir)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text
	}
	return out
}

type summaryLine struct {
	text string
	// warn marks lines about files left on disk.
	warn bool
}

func failureSummary(res *create.Result, dir string) []summaryLine {
	lines := []summaryLine{{text: fmt.Sprintf("✗ %s while %s", capitalize(res.Outcome.String()), res.FailedIn)}}
	if res.Err != nil {
		lines = append(lines, summaryLine{text: res.Err.Error()})
	}

	switch res.Outcome {
	case create.OutcomeTemplateNotFound:
		lines = append(lines, summaryLine{text: fmt.Sprintf("Run '%s list' to see available templates.", branding.CLIName())})
	case create.OutcomePostSetupFailed:
		lines = append(lines, summaryLine{text: fmt.Sprintf("Generated files were kept in %s. Fix the problem and rerun the %s step by hand.",
			dir, res.Step), warn: true})
	}

	switch {
	case res.Removed:
		lines = append(lines, summaryLine{text: fmt.Sprintf("Removed %s (created by this run).", dir)})
	case res.CleanupErr != nil:
		lines = append(lines, summaryLine{text: fmt.Sprintf("Could not remove %s: %v", dir, res.CleanupErr), warn: true})
	case res.Outcome != create.OutcomePostSetupFailed && exists(res):
		lines = append(lines, summaryLine{text: fmt.Sprintf("Left %s in place for inspection.", dir), warn: true})
	}
	return lines
}

// exists reports whether files may have been written to the target.
func exists(res *create.Result) bool {
	return res.TargetDir != "" && (len(res.Files) > 0 || (!res.Created && res.FailedIn >= create.StateMaterializing))
}

func stepSucceeded(res *create.Result, step string) bool {
	for _, s := range res.Steps {
		if s.Step == step {
			return s.Status == postsetup.StatusSuccess
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// RelDir shortens dir relative to cwd for display when possible.
func RelDir(cwd, dir string) string {
	if cwd == "" || !filepath.IsAbs(dir) {
		return dir
	}
	rel, err := filepath.Rel(cwd, dir)
	if err != nil || !filepath.IsLocal(rel) {
		return dir
	}
	return rel
}
