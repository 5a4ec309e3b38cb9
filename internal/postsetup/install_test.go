package postsetup

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/agentx-labs/create-agentx/internal/scaffold"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInstaller struct {
	dir, manager string
	calls        int
	err          error
}

func (r *recordingInstaller) Install(_ context.Context, dir, manager string) error {
	r.calls++
	r.dir, r.manager = dir, manager
	return r.err
}

func TestDetectPackageManager(t *testing.T) {
	tests := map[string]string{
		"":                                   "npm",
		"npm/10.2.4 node/v20.11.0 linux x64": "npm",
		"pnpm/9.1.0 npm/? node/v20.11.0":     "pnpm",
		"yarn/1.22.19 npm/? node/v18.0.0":    "yarn",
		"bun/1.1.0 npm/? node/v21.6.0":       "bun",
		"deno/1.40.0":                        "npm",
		"pnpm":                               "pnpm",
	}
	for ua, want := range tests {
		assert.Equal(t, want, DetectPackageManager(ua), "user agent %q", ua)
	}
}

func TestInstallStepSkip(t *testing.T) {
	fs := memfs.New()
	step := NewInstallStep(fs, &recordingInstaller{})

	skip, reason := step.Skip(newGen(t, scaffold.Flags{}))
	assert.True(t, skip)
	assert.Contains(t, reason, "package.json")

	require.NoError(t, util.WriteFile(fs, "demo/package.json", []byte("{}"), 0o644))
	skip, _ = step.Skip(newGen(t, scaffold.Flags{}))
	assert.False(t, skip)

	skip, reason = step.Skip(newGen(t, scaffold.Flags{SkipInstall: true}))
	assert.True(t, skip)
	assert.Contains(t, reason, "--skip-install")
}

func TestInstallStepRunUsesSelectedManager(t *testing.T) {
	inst := &recordingInstaller{}
	step := NewInstallStep(memfs.New(), inst)

	gen := newGen(t, scaffold.Flags{PackageManager: "pnpm"})
	gen.OSDir = "/work/demo"

	require.NoError(t, step.Run(context.Background(), gen))
	assert.Equal(t, 1, inst.calls)
	assert.Equal(t, "/work/demo", inst.dir)
	assert.Equal(t, "pnpm", inst.manager)
}

func TestInstallStepPropagatesError(t *testing.T) {
	boom := errors.New("registry unreachable")
	step := NewInstallStep(memfs.New(), &recordingInstaller{err: boom})
	assert.ErrorIs(t, step.Run(context.Background(), newGen(t, scaffold.Flags{})), boom)
}

func TestExecInstaller(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	dir := t.TempDir()
	inst := &ExecInstaller{}

	require.NoError(t, inst.Install(context.Background(), dir, "true"))

	err := inst.Install(context.Background(), dir, "false")
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "false install", cmdErr.Command)
	assert.Equal(t, 1, cmdErr.ExitCode)
}

func TestExecInstallerMissingBinary(t *testing.T) {
	err := (&ExecInstaller{}).Install(context.Background(), t.TempDir(), "definitely-not-a-package-manager")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found on PATH")
}

func TestCommandErrorMessage(t *testing.T) {
	err := &CommandError{Command: "npm install", ExitCode: 1, Stderr: "npm ERR! code E404\nnpm ERR! 404 Not Found\n"}
	assert.Equal(t, "npm install exited with code 1: npm ERR! 404 Not Found", err.Error())

	err = &CommandError{Command: "npm install", ExitCode: 2}
	assert.Equal(t, "npm install exited with code 2", err.Error())
}
