package scaffold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/agentx-labs/create-agentx/internal/templates"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

var (
	// ErrUnsafePath is returned when a substituted file path would leave the target directory.
	ErrUnsafePath = errors.New("path escapes the target directory")
	// ErrDuplicatePath is returned when two template files substitute to the same path.
	ErrDuplicatePath = errors.New("another template file already wrote this path")
)

// WriteError reports the first file or directory that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Result holds the outcome of a materialization.
type Result struct {
	OutputDir string
	// Files are the slash-separated paths written, relative to OutputDir.
	Files []string
}

// Materializer copies template files into a target directory.
type Materializer struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

// NewMaterializer creates a Materializer writing to fsys.
func NewMaterializer(fsys billy.Filesystem, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Materializer{fs: fsys, logger: logger}
}

// Materialize writes every file of d under gen.TargetDir. It stops at the
// first failure and returns a *WriteError naming the path; files already
// written stay on disk for the caller to clean up. Cancellation is checked
// before each file and returns ctx.Err().
func (m *Materializer) Materialize(ctx context.Context, d *templates.Descriptor, gen *GenerationContext) (*Result, error) {
	sub := NewSubstituter(gen.Tokens)
	result := &Result{OutputDir: gen.TargetDir}
	seen := make(map[string]bool, len(d.Files))

	for _, f := range d.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rel := sub.Replace(f.Path)
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			return result, &WriteError{Path: rel, Err: ErrUnsafePath}
		}
		dest := m.fs.Join(gen.TargetDir, filepath.FromSlash(rel))
		if seen[rel] {
			return result, &WriteError{Path: dest, Err: ErrDuplicatePath}
		}
		seen[rel] = true

		if dir := path.Dir(rel); dir != "." {
			dirPath := m.fs.Join(gen.TargetDir, filepath.FromSlash(dir))
			if err := m.fs.MkdirAll(dirPath, 0755); err != nil {
				return result, &WriteError{Path: dirPath, Err: err}
			}
		}

		data := f.Data
		if f.Kind == templates.KindText {
			data = sub.ReplaceBytes(f.Data)
		}

		if err := m.writeFile(dest, data, f.Mode); err != nil {
			return result, &WriteError{Path: dest, Err: err}
		}

		m.logger.Debug("wrote file", "path", dest, "kind", f.Kind.String(), "bytes", len(data))
		result.Files = append(result.Files, rel)
	}

	return result, nil
}

func (m *Materializer) writeFile(dest string, data []byte, mode os.FileMode) error {
	if info, err := m.fs.Lstat(dest); err == nil && info.IsDir() {
		return fmt.Errorf("a directory already exists at %s", dest)
	}
	return util.WriteFile(m.fs, dest, data, mode)
}
