package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agentx-labs/create-agentx/internal/create"
	"github.com/agentx-labs/create-agentx/internal/postsetup"
)

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q:\n%s", want, got)
	}
}

func assertNotContains(t *testing.T, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("output unexpectedly contains %q:\n%s", unwanted, got)
	}
}

func TestNextStepsNodeProject(t *testing.T) {
	res := &create.Result{
		Outcome:        create.OutcomeSuccess,
		PackageManager: "pnpm",
		Files:          []string{"README.md", "package.json"},
		Steps: []postsetup.StepResult{
			{Step: postsetup.StepInstall, Status: postsetup.StatusSkipped, Reason: "disabled by --skip-install"},
		},
	}

	got := strings.Join(NextSteps(res, "my-app"), "|")
	if got != "cd my-app|pnpm install|pnpm start" {
		t.Errorf("NextSteps = %q", got)
	}

	res.Steps[0].Status = postsetup.StatusSuccess
	got = strings.Join(NextSteps(res, "my-app"), "|")
	if got != "cd my-app|pnpm start" {
		t.Errorf("NextSteps after install = %q", got)
	}
}

func TestNextStepsGoProject(t *testing.T) {
	res := &create.Result{Outcome: create.OutcomeSuccess, Files: []string{"go.mod", "cmd/main.go"}}
	got := strings.Join(NextSteps(res, "tool"), "|")
	if got != "cd tool|go build ./..." {
		t.Errorf("NextSteps = %q", got)
	}
}

func TestFailureSummaryWriteFailedRemoved(t *testing.T) {
	res := &create.Result{
		Outcome:   create.OutcomeWriteFailed,
		FailedIn:  create.StateMaterializing,
		Err:       errors.New("writing my-app/src/index.js: disk full"),
		TargetDir: "/work/my-app",
		Created:   true,
		Removed:   true,
		Files:     []string{"README.md"},
	}

	got := strings.Join(FailureSummary(res, "my-app"), "\n")
	assertContains(t, got, "Write failed while materializing")
	assertContains(t, got, "disk full")
	assertContains(t, got, "Removed my-app (created by this run).")
	assertNotContains(t, got, "Left my-app")
}

func TestFailureSummaryWriteFailedPreexisting(t *testing.T) {
	res := &create.Result{
		Outcome:   create.OutcomeWriteFailed,
		FailedIn:  create.StateMaterializing,
		Err:       errors.New("disk full"),
		TargetDir: "my-app",
		Files:     []string{"README.md"},
	}

	got := strings.Join(FailureSummary(res, "my-app"), "\n")
	assertContains(t, got, "Left my-app in place for inspection.")

	lines := failureSummary(res, "my-app")
	last := lines[len(lines)-1]
	if !last.warn {
		t.Errorf("%q is not marked as a warning", last.text)
	}
	for _, l := range lines[:len(lines)-1] {
		if l.warn {
			t.Errorf("%q unexpectedly marked as a warning", l.text)
		}
	}
}

func TestFailureSummaryPostSetup(t *testing.T) {
	res := &create.Result{
		Outcome:   create.OutcomePostSetupFailed,
		FailedIn:  create.StatePostSetup,
		Err:       errors.New("install step failed: npm install exited with code 1"),
		TargetDir: "my-app",
		Created:   true,
		Step:      postsetup.StepInstall,
		Files:     []string{"package.json"},
	}

	got := strings.Join(FailureSummary(res, "my-app"), "\n")
	assertContains(t, got, "Post-setup failed while post-setup")
	assertContains(t, got, "Generated files were kept in my-app")
	assertContains(t, got, "rerun the install step")
	assertNotContains(t, got, "Removed")
}

func TestFailureSummaryTemplateNotFound(t *testing.T) {
	res := &create.Result{
		Outcome:   create.OutcomeTemplateNotFound,
		FailedIn:  create.StateResolving,
		Err:       errors.New(`template "nope": template not found`),
		TargetDir: "my-app",
	}

	got := strings.Join(FailureSummary(res, "my-app"), "\n")
	assertContains(t, got, "Template not found while resolving")
	assertContains(t, got, "create-agentx list")
	assertNotContains(t, got, "in place")
}

func TestReporterOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewReporter(&out, &errOut, "/work")

	r.StageStarted(create.StateMaterializing)
	r.StepFinished(postsetup.StepResult{Step: "install", Status: postsetup.StatusSuccess, Duration: 1500 * time.Millisecond})
	r.StepFinished(postsetup.StepResult{Step: "git", Status: postsetup.StatusSkipped, Reason: "disabled by --skip-git"})
	r.Finished(&create.Result{
		Outcome:   create.OutcomeSuccess,
		State:     create.StateDone,
		TargetDir: "/work/my-app",
		Template:  "basic",
		Version:   "1.2.0",
		Files:     []string{"package.json"},
		Steps:     []postsetup.StepResult{{Step: "install", Status: postsetup.StatusSuccess}},
	})

	got := out.String()
	assertContains(t, got, "Writing files")
	assertContains(t, got, "install (1.5s)")
	assertContains(t, got, "git skipped: disabled by --skip-git")
	assertContains(t, got, "Created my-app")
	assertContains(t, got, "from basic@1.2.0")
	assertContains(t, got, "Next steps:")
	assertContains(t, got, "1. cd my-app")
	assertContains(t, got, "2. npm start")
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr output: %s", errOut.String())
	}
}

func TestReporterFailureGoesToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewReporter(&out, &errOut, "")

	r.Finished(&create.Result{
		Outcome:  create.OutcomeValidationFailed,
		FailedIn: create.StateValidating,
		Err:      errors.New(`invalid project name "My App": invalid characters`),
	})

	assertContains(t, errOut.String(), "Validation failed while validating")
	assertContains(t, errOut.String(), "invalid characters")
	if out.Len() != 0 {
		t.Errorf("unexpected stdout output: %s", out.String())
	}
}

func TestRelDir(t *testing.T) {
	tests := []struct{ cwd, dir, want string }{
		{"/work", "/work/app", "app"},
		{"/work", "/work/a/b", "a/b"},
		{"/work", "/elsewhere/app", "/elsewhere/app"},
		{"", "/work/app", "/work/app"},
		{"/work", "app", "app"},
	}
	for _, tt := range tests {
		if got := RelDir(tt.cwd, tt.dir); got != tt.want {
			t.Errorf("RelDir(%q, %q) = %q, want %q", tt.cwd, tt.dir, got, tt.want)
		}
	}
}
