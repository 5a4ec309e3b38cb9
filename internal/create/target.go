package create

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/agentx-labs/create-agentx/internal/branding"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

var (
	// ErrTargetNotEmpty is returned when the target directory has content and
	// overwriting was not requested.
	ErrTargetNotEmpty = errors.New("target directory exists and is not empty")
	// ErrTargetNotDir is returned when the target path is an existing file.
	ErrTargetNotDir = errors.New("target path exists and is not a directory")
)

// TargetStatus describes what is at the target path before a run.
type TargetStatus int

const (
	TargetAbsent TargetStatus = iota
	TargetEmpty
	TargetOccupied
)

// InspectTarget reports the state of dir on fsys.
func InspectTarget(fsys billy.Filesystem, dir string) (TargetStatus, error) {
	info, err := fsys.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return TargetAbsent, nil
	}
	if err != nil {
		return TargetAbsent, fmt.Errorf("checking %s: %w", dir, err)
	}
	if !info.IsDir() {
		return TargetAbsent, fmt.Errorf("%s: %w", dir, ErrTargetNotDir)
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return TargetAbsent, fmt.Errorf("reading %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return TargetEmpty, nil
	}
	return TargetOccupied, nil
}

// LockFileName is held inside the target directory while files are written.
// A second run into the same directory finds it and fails.
func LockFileName() string { return "." + branding.CLIName() + ".lock" }

// target tracks the project directory of one run. created is recorded only
// when this run made the directory and is the only thing cleanup trusts.
type target struct {
	fs      billy.Filesystem
	dir     string
	created bool
	locked  bool
	removed bool
}

// claim readies the directory for writing. The target is inspected again
// because it may have appeared since validation. Without overwrite, a
// directory that is not empty, or that another run holds, fails with
// ErrTargetNotEmpty.
func (t *target) claim(overwrite bool) error {
	status, err := InspectTarget(t.fs, t.dir)
	if err != nil {
		return err
	}
	if status == TargetOccupied && !overwrite {
		return fmt.Errorf("%s: %w", t.dir, ErrTargetNotEmpty)
	}
	if status == TargetAbsent {
		if err := t.fs.MkdirAll(t.dir, 0755); err != nil {
			return err
		}
	}

	lock, err := t.fs.OpenFile(t.lockPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s is in use by another run: %w", t.dir, ErrTargetNotEmpty)
	}
	if err != nil {
		return err
	}
	if err := lock.Close(); err != nil {
		return err
	}
	t.locked = true

	if status != TargetAbsent {
		return nil
	}
	// MkdirAll succeeds on an existing directory, so the directory only
	// counts as ours if the lock is all it holds.
	entries, err := t.fs.ReadDir(t.dir)
	if err != nil {
		return err
	}
	if len(entries) != 1 {
		if overwrite {
			return nil
		}
		if rerr := t.release(); rerr != nil {
			return rerr
		}
		return fmt.Errorf("%s: %w", t.dir, ErrTargetNotEmpty)
	}
	t.created = true
	return nil
}

func (t *target) lockPath() string {
	return t.fs.Join(t.dir, LockFileName())
}

// release removes the lock. Calling it more than once is a no-op.
func (t *target) release() error {
	if !t.locked {
		return nil
	}
	if err := t.fs.Remove(t.lockPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", t.lockPath(), err)
	}
	t.locked = false
	return nil
}

// cleanup removes the directory if this run created it. Calling it more
// than once is a no-op.
func (t *target) cleanup() (bool, error) {
	if !t.created || t.removed {
		return false, nil
	}
	if err := util.RemoveAll(t.fs, t.dir); err != nil {
		return false, fmt.Errorf("removing %s: %w", t.dir, err)
	}
	t.removed = true
	return true, nil
}
