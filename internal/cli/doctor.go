package cli

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/agentx-labs/create-agentx/internal/config"
	"github.com/agentx-labs/create-agentx/internal/postsetup"
	"github.com/agentx-labs/create-agentx/internal/templates"
	"github.com/spf13/cobra"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

func newDoctorCommand(build BuildInfo, deps *Deps) *cobra.Command {
	var templateDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment and templates",
		Long: `Run diagnostic checks: package managers and toolchains on PATH, configuration,
the git identity used for initial commits, and every template source.

Use --template-dir to validate templates you are authoring.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := false

			runRuntimeCheck(out)

			fmt.Fprintln(out, "Config check:")
			settings, err := config.Decode(deps.Viper)
			if err != nil {
				fmt.Fprintf(out, "  [FAIL] %v\n", err)
				failed = true
			} else {
				fmt.Fprintf(out, "  [ OK ] %s\n", config.FilePath())
				id := postsetup.ResolveIdentity(postsetup.GitIdentity{
					Name:  settings.Git.AuthorName,
					Email: settings.Git.AuthorEmail,
				}, postsetup.GlobalGitIdentity)
				fmt.Fprintf(out, "  [INFO] initial commits authored by %s <%s>\n", id.Name, id.Email)
			}

			cwd, err := deps.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}

			var registry *templates.Registry
			switch {
			case templateDir != "":
				registry = templates.NewRegistry([]templates.Source{templates.DirSource(absPath(cwd, templateDir))},
					templates.WithCLIVersion(build.Version))
			case settings != nil:
				registry = templates.Default(absPaths(cwd, settings.TemplateDirs), templates.WithCLIVersion(build.Version))
			default:
				registry = templates.Default(nil, templates.WithCLIVersion(build.Version))
			}
			if !runTemplateCheck(out, registry) {
				failed = true
			}

			if failed {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Validate only the templates in this directory")
	return cmd
}

func runRuntimeCheck(out io.Writer) {
	fmt.Fprintln(out, "Runtime check:")
	for _, name := range append([]string{"node", "go", "git"}, postsetup.PackageManagers...) {
		checkBinary(out, name)
	}
}

func checkBinary(out io.Writer, name string) {
	path, err := lookPath(name)
	if err != nil {
		fmt.Fprintf(out, "  [MISS] %s not found\n", name)
		return
	}
	fmt.Fprintf(out, "  [ OK ] %s found at %s\n", name, path)
}

// runTemplateCheck prints one line per template and reports whether all
// of them are usable.
func runTemplateCheck(out io.Writer, registry *templates.Registry) bool {
	fmt.Fprintln(out, "Templates check:")
	reports, err := registry.Check()
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return false
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "  [WARN] no templates found")
		return false
	}

	ok := true
	for _, rep := range reports {
		switch {
		case rep.Err != nil:
			fmt.Fprintf(out, "  [FAIL] %s (%s): %v\n", rep.Name, rep.Source, rep.Err)
			ok = false
		case rep.Shadowed:
			fmt.Fprintf(out, "  [INFO] %s %s (%s) is shadowed\n", rep.Name, rep.Version, rep.Source)
		default:
			fmt.Fprintf(out, "  [ OK ] %s %s (%s), %d files\n", rep.Name, rep.Version, rep.Source, rep.Files)
		}
	}
	return ok
}
