package postsetup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/agentx-labs/create-agentx/internal/scaffold"
	"github.com/go-git/go-billy/v5"
)

// PackageManagers lists the supported package managers.
var PackageManagers = []string{"npm", "pnpm", "yarn", "bun"}

// DefaultPackageManager is used when nothing else selects one.
const DefaultPackageManager = "npm"

// DetectPackageManager picks the package manager that launched the CLI from
// the npm_config_user_agent value (e.g. "pnpm/9.1.0 npm/? node/v20.11.0").
// Unknown or empty agents fall back to npm.
func DetectPackageManager(userAgent string) string {
	name, _, _ := strings.Cut(userAgent, "/")
	for _, pm := range PackageManagers {
		if name == pm {
			return pm
		}
	}
	return DefaultPackageManager
}

// Installer installs dependencies for the project in dir.
type Installer interface {
	Install(ctx context.Context, dir, manager string) error
}

// CommandError reports a package manager process that exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if last := lastLine(e.Stderr); last != "" {
		msg += ": " + last
	}
	return msg
}

// ExecInstaller runs "<manager> install" as a child process.
type ExecInstaller struct {
	// Stdout and Stderr receive the process output; nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Install runs the package manager in dir.
func (e *ExecInstaller) Install(ctx context.Context, dir, manager string) error {
	bin, err := exec.LookPath(manager)
	if err != nil {
		return fmt.Errorf("package manager %q not found on PATH: %w", manager, err)
	}

	cmd := exec.CommandContext(ctx, bin, "install")
	cmd.Dir = dir

	stdout := e.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := e.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	var stderrBuf bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &CommandError{
				Command:  manager + " install",
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderrBuf.String(),
			}
		}
		return fmt.Errorf("running %s install: %w", manager, err)
	}
	return nil
}

// InstallStep installs dependencies when the generated project declares them.
type InstallStep struct {
	fs        billy.Filesystem
	installer Installer
}

// NewInstallStep creates the install step. fsys is used to look for package.json.
func NewInstallStep(fsys billy.Filesystem, installer Installer) *InstallStep {
	return &InstallStep{fs: fsys, installer: installer}
}

func (s *InstallStep) Name() string { return StepInstall }

func (s *InstallStep) Skip(gen *scaffold.GenerationContext) (bool, string) {
	if gen.Flags.SkipInstall {
		return true, "disabled by --skip-install"
	}
	if _, err := s.fs.Stat(s.fs.Join(gen.TargetDir, "package.json")); err != nil {
		return true, "no package.json in generated project"
	}
	return false, ""
}

func (s *InstallStep) Run(ctx context.Context, gen *scaffold.GenerationContext) error {
	manager := gen.Flags.PackageManager
	if manager == "" {
		manager = DefaultPackageManager
	}
	return s.installer.Install(ctx, gen.OSDir, manager)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
