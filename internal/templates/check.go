package templates

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Masterminds/semver/v3"
)

// Report is the health of one template in one source.
type Report struct {
	Name    string
	Source  string
	Version string
	Files   int
	// Shadowed is set when an earlier source has a template of the same name.
	Shadowed bool
	Err      error
}

// Check loads every template of every source, shadowed ones included, and
// reports what is wrong with each. Unlike List it does not stop at the
// first broken template.
func (r *Registry) Check() ([]Report, error) {
	seen := make(map[string]bool)
	var reports []Report

	for _, src := range r.sources {
		entries, err := fs.ReadDir(src.FS, ".")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("listing templates in %s: %w", src.Name, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			rep := Report{Name: entry.Name(), Source: src.Name, Shadowed: seen[entry.Name()]}

			m, err := loadManifest(src, entry.Name())
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			seen[entry.Name()] = true
			if err != nil {
				rep.Err = err
				reports = append(reports, rep)
				continue
			}
			rep.Version = m.Version

			if _, err := semver.NewVersion(m.Version); err != nil {
				rep.Err = fmt.Errorf("invalid version %q: %w", m.Version, err)
			} else if err := r.checkRequires(m); err != nil {
				rep.Err = err
			} else if files, err := enumerate(src, entry.Name(), m); err != nil {
				rep.Err = err
			} else {
				rep.Files = len(files)
			}
			reports = append(reports, rep)
		}
	}
	return reports, nil
}
