package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/agentx-labs/create-agentx/internal/branding"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyTemplate       = "template"
	KeyPackageManager = "package_manager"
	KeySkipInstall    = "skip_install"
	KeySkipGit        = "skip_git"
	KeyAuthor         = "author"
	KeyLicense        = "license"
	KeyTemplateDirs   = "template_dirs"
	KeyGitAuthorName  = "git.author_name"
	KeyGitAuthorEmail = "git.author_email"
)

// Keys lists every key accepted by Set, in display order.
var Keys = []string{
	KeyTemplate,
	KeyPackageManager,
	KeySkipInstall,
	KeySkipGit,
	KeyAuthor,
	KeyLicense,
	KeyTemplateDirs,
	KeyGitAuthorName,
	KeyGitAuthorEmail,
}

// Settings is the resolved configuration for a create run.
type Settings struct {
	Template       string      `mapstructure:"template" validate:"required"`
	PackageManager string      `mapstructure:"package_manager" validate:"omitempty,oneof=npm pnpm yarn bun"`
	SkipInstall    bool        `mapstructure:"skip_install"`
	SkipGit        bool        `mapstructure:"skip_git"`
	Author         string      `mapstructure:"author"`
	License        string      `mapstructure:"license" validate:"required"`
	TemplateDirs   []string    `mapstructure:"template_dirs" validate:"dive,required"`
	Git            GitSettings `mapstructure:"git"`
}

// GitSettings holds the identity used for the initial commit.
type GitSettings struct {
	AuthorName  string `mapstructure:"author_name"`
	AuthorEmail string `mapstructure:"author_email" validate:"omitempty,email"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names the way users type them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Dir returns the path to the config directory (~/.create-agentx/).
// CREATE_AGENTX_CONFIG_DIR overrides the location.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("CONFIG_DIR")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// SetDefaults registers the built-in default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyTemplate, "basic")
	v.SetDefault(KeyPackageManager, "")
	v.SetDefault(KeySkipInstall, false)
	v.SetDefault(KeySkipGit, false)
	v.SetDefault(KeyAuthor, "")
	v.SetDefault(KeyLicense, "MIT")
	v.SetDefault(KeyTemplateDirs, []string{})
	v.SetDefault(KeyGitAuthorName, "")
	v.SetDefault(KeyGitAuthorEmail, "")
}

// Load configures the global Viper instance.
func Load() *viper.Viper {
	v := viper.GetViper()
	Configure(v)
	return v
}

// Configure sets defaults on v and reads the config file and environment.
func Configure(v *viper.Viper) {
	SetDefaults(v)
	v.SetConfigFile(FilePath())
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = v.ReadInConfig()
}

// Decode unmarshals v into Settings and validates the result.
func Decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings against their declared constraints.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	// Namespace is "Settings.git.author_email"; drop the struct name.
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "email":
		return fmt.Sprintf("%s must be an email address, got %q", key, fe.Value())
	default:
		return fmt.Sprintf("%s failed %q check", key, fe.Tag())
	}
}

// Set validates value for key against the effective settings in v and
// persists it to the config file. Only keys already in the file and key
// itself are written; defaults and environment values are not.
func Set(v *viper.Viper, key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}

	v.Set(key, value)
	if _, err := Decode(v); err != nil {
		return err
	}

	if err := EnsureDir(); err != nil {
		return err
	}

	configFile := FilePath()
	file := viper.New()
	file.SetConfigFile(configFile)
	file.SetConfigType(fileType)
	if _, err := os.Stat(configFile); err == nil {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}
	file.Set(key, value)

	if err := file.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
