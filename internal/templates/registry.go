package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	gitignore "github.com/denormal/go-gitignore"
)

// filesDir is the directory inside a template that holds the project files.
const filesDir = "files"

var (
	// ErrTemplateNotFound is returned when no source has a matching template.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrIncompatible is returned when a template requires a different CLI version.
	ErrIncompatible = errors.New("template is not compatible with this version")
)

// Source is a root holding one directory per template.
type Source struct {
	// Name labels the source in listings, e.g. "builtin".
	Name string
	FS   fs.FS
}

// DirSource returns a Source reading templates from a directory on disk.
func DirSource(dir string) Source {
	return Source{Name: dir, FS: os.DirFS(dir)}
}

// Summary describes a template without loading its files.
type Summary struct {
	ID          string
	Version     string
	Description string
	Source      string
}

// Registry resolves template identifiers against an ordered list of sources.
// Earlier sources shadow later ones.
type Registry struct {
	sources    []Source
	cliVersion string
}

// Option configures a Registry.
type Option func(*Registry)

// WithCLIVersion sets the version checked against a manifest's requires
// constraint. Empty and "dev" versions skip the check.
func WithCLIVersion(version string) Option {
	return func(r *Registry) { r.cliVersion = version }
}

// NewRegistry creates a Registry over the given sources.
func NewRegistry(sources []Source, opts ...Option) *Registry {
	r := &Registry{sources: sources}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default returns a Registry that searches the user directories first and
// the embedded built-ins last.
func Default(templateDirs []string, opts ...Option) *Registry {
	sources := make([]Source, 0, len(templateDirs)+1)
	for _, dir := range templateDirs {
		sources = append(sources, DirSource(dir))
	}
	sources = append(sources, Builtin())
	return NewRegistry(sources, opts...)
}

// ParseID splits "name@constraint" into its parts. The constraint is empty
// when the identifier carries none.
func ParseID(id string) (name, constraint string) {
	name, constraint, _ = strings.Cut(id, "@")
	return name, constraint
}

// List returns every resolvable template, sorted by ID. Shadowed templates are omitted.
func (r *Registry) List() ([]Summary, error) {
	seen := make(map[string]bool)
	var out []Summary

	for _, src := range r.sources {
		entries, err := fs.ReadDir(src.FS, ".")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("listing templates in %s: %w", src.Name, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() || seen[entry.Name()] {
				continue
			}
			m, err := loadManifest(src, entry.Name())
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			seen[entry.Name()] = true
			out = append(out, Summary{
				ID:          m.Name,
				Version:     m.Version,
				Description: m.Description,
				Source:      src.Name,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Resolve finds the template named by id ("name" or "name@constraint") and
// loads its complete file set. Unknown names and unsatisfied constraints
// return an error wrapping ErrTemplateNotFound.
func (r *Registry) Resolve(id string) (*Descriptor, error) {
	name, rawConstraint := ParseID(id)
	if name == "" {
		return nil, fmt.Errorf("%w: empty template identifier", ErrTemplateNotFound)
	}

	var constraint *semver.Constraints
	if rawConstraint != "" {
		c, err := semver.NewConstraint(rawConstraint)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid version constraint %q: %v", ErrTemplateNotFound, rawConstraint, err)
		}
		constraint = c
	}

	var rejected []string
	for _, src := range r.sources {
		m, err := loadManifest(src, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		version, err := semver.NewVersion(m.Version)
		if err != nil {
			return nil, fmt.Errorf("template %s in %s: invalid version %q: %w", name, src.Name, m.Version, err)
		}
		if constraint != nil && !constraint.Check(version) {
			rejected = append(rejected, fmt.Sprintf("%s (%s)", version, src.Name))
			continue
		}
		if err := r.checkRequires(m); err != nil {
			return nil, err
		}

		files, err := enumerate(src, name, m)
		if err != nil {
			return nil, err
		}

		return &Descriptor{
			ID:          m.Name,
			Version:     version,
			Description: m.Description,
			Source:      path.Join(src.Name, name),
			Files:       files,
		}, nil
	}

	if len(rejected) > 0 {
		return nil, fmt.Errorf("%w: no version of %q satisfies %q (available: %s)",
			ErrTemplateNotFound, name, rawConstraint, strings.Join(rejected, ", "))
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

func (r *Registry) checkRequires(m *Manifest) error {
	if m.Requires == "" || r.cliVersion == "" || r.cliVersion == "dev" {
		return nil
	}
	current, err := semver.NewVersion(strings.TrimPrefix(r.cliVersion, "v"))
	if err != nil {
		// Unparseable build versions (e.g. git describe output) skip the check.
		return nil
	}
	c, err := semver.NewConstraint(m.Requires)
	if err != nil {
		return fmt.Errorf("template %s: invalid requires constraint %q: %w", m.Name, m.Requires, err)
	}
	if !c.Check(current) {
		return fmt.Errorf("%w: %s requires %s, running %s", ErrIncompatible, m.Name, m.Requires, current)
	}
	return nil
}

// loadManifest reads and validates <name>/template.yaml from src. A missing
// manifest returns an error wrapping fs.ErrNotExist.
func loadManifest(src Source, name string) (*Manifest, error) {
	if !fs.ValidPath(name) || strings.Contains(name, "/") {
		return nil, fmt.Errorf("template %q: %w", name, fs.ErrNotExist)
	}
	manifestPath := path.Join(name, ManifestFile)
	data, err := fs.ReadFile(src.FS, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s in %s: %w", manifestPath, src.Name, err)
	}
	m, err := ParseManifest(data, path.Join(src.Name, manifestPath))
	if err != nil {
		return nil, err
	}
	if m.Name != name {
		return nil, fmt.Errorf("template directory %q in %s declares name %q", name, src.Name, m.Name)
	}
	return m, nil
}

// enumerate reads every file under <name>/files, honoring ignore patterns.
func enumerate(src Source, name string, m *Manifest) ([]FileEntry, error) {
	root := path.Join(name, filesDir)
	ignore := gitignore.New(strings.NewReader(strings.Join(m.Ignore, "\n")), "/", nil)

	var files []FileEntry
	seen := make(map[string]string)

	err := fs.WalkDir(src.FS, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}
		rel := strings.TrimPrefix(p, root+"/")

		if match := ignore.Relative(filepath.FromSlash(rel), d.IsDir()); match != nil && match.Ignore() {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return fmt.Errorf("template %s: %s is not a regular file", name, rel)
		}

		data, err := fs.ReadFile(src.FS, p)
		if err != nil {
			return fmt.Errorf("reading template file %s: %w", rel, err)
		}

		out := outputPath(rel)
		if prev, dup := seen[out]; dup {
			return fmt.Errorf("template %s: %s and %s both produce %s", name, prev, rel, out)
		}
		seen[out] = rel

		mode := ModeRegular
		if matchAny(m.Executable, rel) {
			mode = ModeExecutable
		}

		files = append(files, FileEntry{
			Path:       out,
			SourcePath: rel,
			Kind:       classify(rel, data, m.Binary),
			Mode:       mode,
			Data:       data,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("template %s in %s has no %s/ directory", name, src.Name, filesDir)
		}
		return nil, fmt.Errorf("enumerating template %s: %w", name, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("template %s in %s has no files", name, src.Name)
	}
	return files, nil
}
