// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this directory before building; Go's
// //go:embed bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GitHubRepo  string `yaml:"github_repo"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "create-agentx",
			DisplayName: "AgentX",
			Description: "Scaffold a new AgentX project from a template",
			HomeDir:     ".create-agentx",
			EnvPrefix:   "CREATE_AGENTX",
			GitHubRepo:  "ecruz165/create-agentx",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "create-agentx").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "AgentX").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".create-agentx").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CREATE_AGENTX").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GitHubRepo returns the "owner/repo" string used in help output.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// IssuesURL returns the address where bugs are reported.
func IssuesURL() string { return "https://github.com/" + GitHubRepo() + "/issues" }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("TEMPLATE") → "CREATE_AGENTX_TEMPLATE".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}

// CommitMessage returns the message used for the initial commit of a generated project.
func CommitMessage() string {
	return "Initial commit from " + CLIName()
}
