package scaffold

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentx-labs/create-agentx/internal/branding"
	"github.com/agentx-labs/create-agentx/internal/projectname"
	"golang.org/x/mod/module"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultVersion is written to {{version}} when the user gives none.
const DefaultVersion = "0.1.0"

// Flags select optional behavior of a run.
type Flags struct {
	SkipInstall    bool
	SkipGit        bool
	PackageManager string
	Overwrite      bool
}

// Fields are optional user-supplied values that feed placeholder tokens.
type Fields struct {
	Description string
	Author      string
	License     string
	ModulePath  string
	Version     string
}

// GenerationContext is everything a run knows about the project it is
// creating. One run builds it once and passes it by pointer to each stage.
type GenerationContext struct {
	// TargetDir is the project root, as a path on the run's filesystem.
	TargetDir string
	// OSDir is TargetDir on the host, used by steps that spawn processes.
	OSDir  string
	Name   projectname.Name
	Tokens Tokens
	Flags  Flags
}

// NewGenerationContext derives the token set for name and validates the
// user-supplied fields.
func NewGenerationContext(name projectname.Name, targetDir string, fields Fields, flags Flags, now time.Time) (*GenerationContext, error) {
	if name.IsZero() {
		return nil, fmt.Errorf("project name is required")
	}
	if targetDir == "" {
		targetDir = name.Base()
	}
	if flags.PackageManager == "" {
		flags.PackageManager = "npm"
	}

	display := DisplayName(name.Base())
	projectDir := filepath.Base(targetDir)

	modulePath := fields.ModulePath
	if modulePath == "" {
		modulePath = "example.com/" + projectDir
	}
	if err := module.CheckPath(modulePath); err != nil {
		return nil, fmt.Errorf("invalid module path: %w", err)
	}

	version := fields.Version
	if version == "" {
		version = DefaultVersion
	}
	description := fields.Description
	if description == "" {
		description = fmt.Sprintf("%s, created with %s", display, branding.CLIName())
	}
	license := fields.License
	if license == "" {
		license = "MIT"
	}

	tokens := Tokens{
		TokenProjectName:    name.String(),
		TokenProjectDir:     projectDir,
		TokenDisplayName:    display,
		TokenDescription:    description,
		TokenAuthor:         fields.Author,
		TokenLicense:        license,
		TokenVersion:        version,
		TokenYear:           strconv.Itoa(now.Year()),
		TokenModulePath:     modulePath,
		TokenPackageManager: flags.PackageManager,
	}

	return &GenerationContext{
		TargetDir: targetDir,
		Name:      name,
		Tokens:    tokens,
		Flags:     flags,
	}, nil
}

// DisplayName turns "my-cool-app" into "My Cool App".
func DisplayName(base string) string {
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '-' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
