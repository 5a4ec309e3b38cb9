package templates

import (
	"bytes"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
)

// Kind tells the materializer whether a file takes placeholder substitution.
type Kind int

const (
	// KindText files have placeholder tokens replaced.
	KindText Kind = iota
	// KindBinary files are copied byte for byte.
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Default file modes for generated files.
const (
	ModeRegular    fs.FileMode = 0644
	ModeExecutable fs.FileMode = 0755
)

// sniffLen matches the window git uses to decide whether a blob is binary.
const sniffLen = 8000

// Descriptor is a resolved template. It is read-only once returned by Resolve.
type Descriptor struct {
	ID          string
	Version     *semver.Version
	Description string
	// Source names where the template came from, e.g. "builtin/basic" or a directory path.
	Source string
	Files  []FileEntry
}

// FileEntry is one file of a template.
type FileEntry struct {
	// Path is the slash-separated destination path relative to the project root,
	// after dotfile renames and .tmpl stripping. It may still contain placeholder tokens.
	Path string
	// SourcePath is the slash-separated path inside the template's files/ tree.
	SourcePath string
	Kind       Kind
	Mode       fs.FileMode
	Data       []byte
}

// Paths returns the destination paths in resolution order.
func (d *Descriptor) Paths() []string {
	paths := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// dotfileRenames lists files that are stored without their leading dot,
// because package registries drop dotfiles when publishing.
var dotfileRenames = map[string]string{
	"_gitignore":     ".gitignore",
	"_npmrc":         ".npmrc",
	"_editorconfig":  ".editorconfig",
	"_prettierrc":    ".prettierrc",
	"_gitattributes": ".gitattributes",
}

// outputPath maps a template-relative source path to its destination path.
func outputPath(src string) string {
	dir, base := path.Split(src)
	if renamed, ok := dotfileRenames[base]; ok {
		base = renamed
	}
	base = strings.TrimSuffix(base, ".tmpl")
	return dir + base
}

// matchAny reports whether rel matches one of the globs. Globs without a
// slash are matched against the base name as well.
func matchAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := path.Match(g, rel); ok {
			return true
		}
		if !strings.Contains(g, "/") {
			if ok, _ := path.Match(g, path.Base(rel)); ok {
				return true
			}
		}
	}
	return false
}

// classify decides the kind of a file. Explicit binary globs win; otherwise a
// NUL byte in the leading window or invalid UTF-8 marks the file binary.
func classify(rel string, data []byte, binaryGlobs []string) Kind {
	if matchAny(binaryGlobs, rel) {
		return KindBinary
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(data) {
		return KindBinary
	}
	return KindText
}
