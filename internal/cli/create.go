package cli

import (
	"fmt"
	"path/filepath"

	"github.com/agentx-labs/create-agentx/internal/config"
	"github.com/agentx-labs/create-agentx/internal/create"
	"github.com/agentx-labs/create-agentx/internal/logging"
	"github.com/agentx-labs/create-agentx/internal/postsetup"
	"github.com/agentx-labs/create-agentx/internal/projectname"
	"github.com/agentx-labs/create-agentx/internal/scaffold"
	"github.com/agentx-labs/create-agentx/internal/templates"
	"github.com/agentx-labs/create-agentx/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const namePlaceholder = "my-app"

type createOptions struct {
	template       string
	packageManager string
	skipInstall    bool
	skipGit        bool
	author         string
	license        string
	description    string
	modulePath     string
	dir            string
	overwrite      bool
	yes            bool
	verbose        bool
}

// settingFlags maps config keys to the flags that override them.
var settingFlags = map[string]string{
	config.KeyTemplate:       "template",
	config.KeyPackageManager: "package-manager",
	config.KeySkipInstall:    "skip-install",
	config.KeySkipGit:        "skip-git",
	config.KeyAuthor:         "author",
	config.KeyLicense:        "license",
}

func (o *createOptions) register(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.Flags()
	f.StringVarP(&o.template, "template", "t", "", "Template to use, optionally with a version constraint (e.g. basic@^1)")
	f.StringVar(&o.packageManager, "package-manager", "", "Package manager for installing dependencies (npm, pnpm, yarn, bun)")
	f.BoolVar(&o.skipInstall, "skip-install", false, "Do not install dependencies")
	f.BoolVar(&o.skipGit, "skip-git", false, "Do not initialize a git repository")
	f.StringVar(&o.author, "author", "", "Author written into the project metadata")
	f.StringVar(&o.license, "license", "", "License identifier (default MIT)")
	f.StringVar(&o.description, "description", "", "One-line project description")
	f.StringVar(&o.modulePath, "module", "", "Go module path (default example.com/<project-name>)")
	f.StringVar(&o.dir, "dir", "", "Target directory (default ./<project-name>)")
	f.BoolVar(&o.overwrite, "overwrite", false, "Write into a non-empty target directory")
	f.BoolVarP(&o.yes, "yes", "y", false, "Never prompt; use defaults for missing values")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Print diagnostic logs to stderr")

	for key, name := range settingFlags {
		// Lookup cannot fail for flags registered above.
		_ = v.BindPFlag(key, f.Lookup(name))
	}
}

func runCreate(cmd *cobra.Command, args []string, opts *createOptions, build BuildInfo, deps *Deps) error {
	ctx := cmd.Context()
	logger := logging.WithRun(logging.New(deps.LogOutput, opts.verbose))

	settings, err := config.Decode(deps.Viper)
	if err != nil {
		return err
	}

	cwd, err := deps.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	registry := templates.Default(absPaths(cwd, settings.TemplateDirs), templates.WithCLIVersion(build.Version))
	interactive := deps.Prompter != nil && !opts.yes

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" && interactive {
		if name, err = deps.Prompter.ProjectName(ctx, namePlaceholder); err != nil {
			return err
		}
	}

	templateID := settings.Template
	if interactive && !cmd.Flags().Changed("template") {
		choices, err := registry.List()
		if err != nil {
			return fmt.Errorf("listing templates: %w", err)
		}
		if templateID, err = deps.Prompter.Template(ctx, choices, templateID); err != nil {
			return err
		}
	}

	packageManager := settings.PackageManager
	if packageManager == "" {
		packageManager = postsetup.DetectPackageManager(deps.UserAgent)
	}

	// An invalid name leaves targetDir empty; the run rejects the name first.
	targetDir := ""
	if opts.dir != "" {
		targetDir = absPath(cwd, opts.dir)
	} else if n, err := projectname.Parse(name); err == nil {
		targetDir = filepath.Join(cwd, n.Base())
	}

	overwrite := opts.overwrite
	if !overwrite && interactive && targetDir != "" {
		status, err := create.InspectTarget(deps.FS, targetDir)
		if err == nil && status == create.TargetOccupied {
			if overwrite, err = deps.Prompter.ConfirmOverwrite(ctx, tui.RelDir(cwd, targetDir)); err != nil {
				return err
			}
		}
	}

	installer := deps.Installer
	if installer == nil {
		installer = &postsetup.ExecInstaller{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
	}
	identity := postsetup.ResolveIdentity(postsetup.GitIdentity{
		Name:  settings.Git.AuthorName,
		Email: settings.Git.AuthorEmail,
	}, postsetup.GlobalGitIdentity)

	runner := postsetup.NewRunner(logger,
		postsetup.NewInstallStep(deps.FS, installer),
		postsetup.NewGitStep(deps.FS, identity),
	)
	orch := create.New(deps.FS, registry, scaffold.NewMaterializer(deps.FS, logger), runner,
		create.WithReporter(tui.NewReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), cwd)),
		create.WithLogger(logger),
		create.WithClock(deps.Now),
	)

	res := orch.Run(ctx, create.Request{
		Name:      name,
		Template:  templateID,
		TargetDir: targetDir,
		Fields: scaffold.Fields{
			Description: opts.description,
			Author:      settings.Author,
			License:     settings.License,
			ModulePath:  opts.modulePath,
		},
		Flags: scaffold.Flags{
			SkipInstall:    settings.SkipInstall,
			SkipGit:        settings.SkipGit,
			PackageManager: packageManager,
			Overwrite:      overwrite,
		},
	})
	if !res.OK() {
		return &ExitError{Code: res.ExitCode(), Err: res.Err, Reported: true}
	}
	return nil
}

func absPath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}

func absPaths(cwd string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, absPath(cwd, p))
	}
	return out
}
