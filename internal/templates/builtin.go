package templates

import (
	"embed"
	"io/fs"
)

// builtinFS holds the templates shipped with the CLI. The all: prefix keeps
// underscore-prefixed files such as _gitignore.
//
//go:embed all:builtin
var builtinFS embed.FS

// Builtin returns the Source for the embedded templates.
func Builtin() Source {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return Source{Name: "builtin", FS: sub}
}
