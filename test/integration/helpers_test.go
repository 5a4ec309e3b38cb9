//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/agentx-labs/create-agentx/internal/cli"
	"github.com/agentx-labs/create-agentx/internal/config"
	"github.com/spf13/viper"
)

// testEnv holds the isolated directories of one test.
type testEnv struct {
	WorkDir   string // where projects are created
	ConfigDir string // CREATE_AGENTX_CONFIG_DIR
	BinDir    string // prepended to PATH; holds fake package managers
	Stdout    bytes.Buffer
	Stderr    bytes.Buffer
}

// setupTestEnv sandboxes configuration and PATH. Environment variables are
// restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake package managers are shell scripts")
	}

	env := &testEnv{
		WorkDir:   t.TempDir(),
		ConfigDir: t.TempDir(),
		BinDir:    t.TempDir(),
	}

	t.Setenv("CREATE_AGENTX_CONFIG_DIR", env.ConfigDir)
	t.Setenv("CREATE_AGENTX_GIT_AUTHOR_NAME", "Integration Test")
	t.Setenv("CREATE_AGENTX_GIT_AUTHOR_EMAIL", "integration@example.com")
	t.Setenv("CREATE_AGENTX_PACKAGE_MANAGER", "")
	t.Setenv("PATH", env.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return env
}

// run executes the CLI with args in the work directory and returns the exit code.
func (e *testEnv) run(t *testing.T, args ...string) int {
	t.Helper()
	e.Stdout.Reset()
	e.Stderr.Reset()

	v := viper.New()
	config.Configure(v)

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "1.0.0", Commit: "test", Date: "today"}, cli.Deps{
		Viper: v,
		Getwd: func() (string, error) { return e.WorkDir, nil },
	})
	cmd.SetOut(&e.Stdout)
	cmd.SetErr(&e.Stderr)
	cmd.SetArgs(args)
	return cli.ExitCode(cmd.ExecuteContext(context.Background()))
}

// fakePackageManager installs an executable named name whose body is script.
func (e *testEnv) fakePackageManager(t *testing.T, name, script string) {
	t.Helper()
	writeFileMode(t, filepath.Join(e.BinDir, name), "#!/bin/sh\n"+script, 0o755)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	writeFileMode(t, path, content, 0o644)
}

func writeFileMode(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected path to not exist: %s", path)
	}
}

func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q:\n%s", path, substr, string(data))
	}
}
