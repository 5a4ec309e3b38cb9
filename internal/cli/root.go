package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentx-labs/create-agentx/internal/branding"
	"github.com/agentx-labs/create-agentx/internal/config"
	"github.com/agentx-labs/create-agentx/internal/postsetup"
	"github.com/agentx-labs/create-agentx/internal/prompt"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BuildInfo is injected via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Deps are the collaborators shared by all commands.
type Deps struct {
	// FS is rooted at "/"; commands pass it absolute paths.
	FS billy.Filesystem
	// Viper holds the configured settings.
	Viper *viper.Viper
	// Prompter is nil when input cannot be asked for interactively.
	Prompter prompt.Prompter
	// Installer defaults to running the package manager.
	Installer postsetup.Installer
	// UserAgent is npm_config_user_agent, used to detect the package manager.
	UserAgent string
	Getwd     func() (string, error)
	Now       func() time.Time
	// LogOutput receives --verbose diagnostics.
	LogOutput io.Writer
}

func (d *Deps) setDefaults() {
	if d.FS == nil {
		d.FS = osfs.New("/")
	}
	if d.Viper == nil {
		d.Viper = viper.New()
		config.SetDefaults(d.Viper)
	}
	if d.Getwd == nil {
		d.Getwd = os.Getwd
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.LogOutput == nil {
		d.LogOutput = os.Stderr
	}
}

// NewRootCommand creates the command tree. The root command itself creates
// a project.
func NewRootCommand(build BuildInfo, deps Deps) *cobra.Command {
	deps.setDefaults()

	opts := &createOptions{}
	rootCmd := &cobra.Command{
		Use:   branding.CLIName() + " [project-name]",
		Short: branding.Description(),
		Long: branding.DisplayName() + ` creates a new project from a template: it validates the project name,
copies and fills in the template files, installs dependencies and makes an initial git commit.

Missing values are asked for interactively when a terminal is attached.

Report problems at ` + branding.IssuesURL(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, opts, build, &deps)
		},
	}

	opts.register(rootCmd, deps.Viper)

	rootCmd.AddCommand(newListCommand(build, &deps))
	rootCmd.AddCommand(newConfigCommand(&deps))
	rootCmd.AddCommand(newDoctorCommand(build, &deps))
	rootCmd.AddCommand(newVersionCommand(build))

	return rootCmd
}

// Execute runs the command tree against the real environment. SIGINT and
// SIGTERM cancel the run.
func Execute(version, commit, date string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := Deps{
		Viper:     config.Load(),
		UserAgent: os.Getenv("npm_config_user_agent"),
	}
	if prompt.IsInteractive(os.Stdin) && prompt.IsInteractive(os.Stderr) {
		deps.Prompter = prompt.NewForms(os.Stdin, os.Stderr)
	}

	rootCmd := NewRootCommand(BuildInfo{Version: version, Commit: commit, Date: date}, deps)
	err := rootCmd.ExecuteContext(ctx)

	var exitErr *ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.Reported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
