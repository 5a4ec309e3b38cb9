package templates

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

const customManifest = `name: custom
version: "2.1.0"
description: Custom test template
ignore:
  - "*.log"
  - "cache/"
binary:
  - "assets/*"
executable:
  - "bin/*"
`

func customSource() Source {
	return Source{Name: "custom-src", FS: fstest.MapFS{
		"custom/template.yaml":          {Data: []byte(customManifest)},
		"custom/files/README.md":        {Data: []byte("# {{projectName}}\n")},
		"custom/files/_gitignore":       {Data: []byte("node_modules/\n")},
		"custom/files/main.go.tmpl":     {Data: []byte("package main\n")},
		"custom/files/debug.log":        {Data: []byte("noise")},
		"custom/files/cache/state.json": {Data: []byte("{}")},
		"custom/files/assets/logo.svg":  {Data: []byte("<svg/>")},
		"custom/files/assets/raw.bin":   {Data: []byte{0x00, 0x01, 0x02}},
		"custom/files/bin/run":          {Data: []byte("#!/bin/sh\n")},
		"custom/files/latin1.txt":       {Data: []byte{'c', 'a', 'f', 0xe9}},
	}}
}

func TestResolveBuiltinBasic(t *testing.T) {
	r := Default(nil)
	d, err := r.Resolve("basic")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if d.ID != "basic" {
		t.Errorf("ID = %q, want %q", d.ID, "basic")
	}
	if d.Source != "builtin/basic" {
		t.Errorf("Source = %q, want %q", d.Source, "builtin/basic")
	}

	want := []string{"LICENSE", "README.md", ".gitignore", "package.json", "public/favicon.png", "src/index.js"}
	got := d.Paths()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Paths() = %v, want %v", got, want)
	}

	for _, f := range d.Files {
		wantKind := KindText
		if f.Path == "public/favicon.png" {
			wantKind = KindBinary
		}
		if f.Kind != wantKind {
			t.Errorf("%s: Kind = %s, want %s", f.Path, f.Kind, wantKind)
		}
		if len(f.Data) == 0 {
			t.Errorf("%s: content not loaded at resolve time", f.Path)
		}
	}
}

func TestResolveAllBuiltins(t *testing.T) {
	r := Default(nil)
	list, err := r.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	var ids []string
	for _, s := range list {
		ids = append(ids, s.ID)
		if _, err := r.Resolve(s.ID); err != nil {
			t.Errorf("Resolve(%q) error: %v", s.ID, err)
		}
	}
	if strings.Join(ids, ",") != "basic,go-cli,library" {
		t.Errorf("List() ids = %v", ids)
	}
}

func TestResolveGoCLIStripsTmpl(t *testing.T) {
	d, err := Default(nil).Resolve("go-cli")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	for _, p := range []string{"go.mod", "cmd/main.go", "scripts/build.sh"} {
		if !hasFile(d, p) {
			t.Errorf("missing %s in %v", p, d.Paths())
		}
	}
	for _, f := range d.Files {
		if f.Path == "scripts/build.sh" && f.Mode != ModeExecutable {
			t.Errorf("build.sh mode = %v, want %v", f.Mode, ModeExecutable)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Default(nil).Resolve("nonexistent")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrTemplateNotFound", err)
	}
}

func TestResolveRejectsPathLikeIDs(t *testing.T) {
	for _, id := range []string{"", "../basic", "basic/files", "."} {
		if _, err := Default(nil).Resolve(id); !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrTemplateNotFound", id, err)
		}
	}
}

func TestResolveVersionConstraint(t *testing.T) {
	r := Default(nil)

	d, err := r.Resolve("basic@^1.0.0")
	if err != nil {
		t.Fatalf("Resolve(basic@^1.0.0) error: %v", err)
	}
	if d.Version.String() != "1.2.0" {
		t.Errorf("Version = %s, want 1.2.0", d.Version)
	}

	_, err = r.Resolve("basic@^2")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("Resolve(basic@^2) error = %v, want ErrTemplateNotFound", err)
	}
	if !strings.Contains(err.Error(), "1.2.0") {
		t.Errorf("error should name the available version: %v", err)
	}

	if _, err := r.Resolve("basic@not-a-range"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("invalid constraint: error = %v, want ErrTemplateNotFound", err)
	}
}

func TestResolveCustomSource(t *testing.T) {
	r := NewRegistry([]Source{customSource()})
	d, err := r.Resolve("custom")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if d.Source != "custom-src/custom" {
		t.Errorf("Source = %q", d.Source)
	}
	for _, ignored := range []string{"debug.log", "cache/state.json"} {
		if hasFile(d, ignored) {
			t.Errorf("ignored file %s was enumerated", ignored)
		}
	}

	kinds := map[string]Kind{}
	modes := map[string]uint32{}
	for _, f := range d.Files {
		kinds[f.Path] = f.Kind
		modes[f.Path] = uint32(f.Mode)
	}

	tests := []struct {
		path string
		kind Kind
	}{
		{"README.md", KindText},
		{".gitignore", KindText},
		{"main.go", KindText},
		{"assets/logo.svg", KindBinary},
		{"assets/raw.bin", KindBinary},
		{"latin1.txt", KindBinary},
		{"bin/run", KindText},
	}
	for _, tt := range tests {
		got, ok := kinds[tt.path]
		if !ok {
			t.Errorf("%s not enumerated (have %v)", tt.path, d.Paths())
			continue
		}
		if got != tt.kind {
			t.Errorf("%s: Kind = %s, want %s", tt.path, got, tt.kind)
		}
	}
	if modes["bin/run"] != uint32(ModeExecutable) {
		t.Errorf("bin/run mode = %o, want %o", modes["bin/run"], ModeExecutable)
	}
}

func TestResolveShadowing(t *testing.T) {
	override := Source{Name: "user", FS: fstest.MapFS{
		"basic/template.yaml":     {Data: []byte("name: basic\nversion: \"9.0.0\"\ndescription: shadow\n")},
		"basic/files/only-me.txt": {Data: []byte("hi")},
	}}
	r := NewRegistry([]Source{override, Builtin()})

	d, err := r.Resolve("basic")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if d.Version.String() != "9.0.0" || !hasFile(d, "only-me.txt") {
		t.Errorf("user source did not shadow builtin: %s %v", d.Version, d.Paths())
	}

	// A constraint the shadowing version fails falls through to the builtin.
	d, err = r.Resolve("basic@~1.2")
	if err != nil {
		t.Fatalf("Resolve(basic@~1.2) error: %v", err)
	}
	if d.Source != "builtin/basic" {
		t.Errorf("Source = %q, want builtin/basic", d.Source)
	}

	list, err := r.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	for _, s := range list {
		if s.ID == "basic" && s.Source != "user" {
			t.Errorf("List() shows basic from %q, want user", s.Source)
		}
	}
}

func TestResolveInvalidManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{"missing version", "name: bad\ndescription: x\n", "invalid manifest"},
		{"unknown field", "name: bad\nversion: \"1.0.0\"\ndescription: x\nextra: 1\n", "invalid manifest"},
		{"bad semver", "name: bad\nversion: \"one\"\ndescription: x\n", "invalid version"},
		{"name mismatch", "name: other\nversion: \"1.0.0\"\ndescription: x\n", "declares name"},
		{"empty", "", "manifest is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Source{Name: "t", FS: fstest.MapFS{
				"bad/template.yaml":   {Data: []byte(tt.manifest)},
				"bad/files/README.md": {Data: []byte("x")},
			}}
			_, err := NewRegistry([]Source{src}).Resolve("bad")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveEmptyTemplate(t *testing.T) {
	src := Source{Name: "t", FS: fstest.MapFS{
		"empty/template.yaml":   {Data: []byte("name: empty\nversion: \"1.0.0\"\ndescription: x\nignore: [\"*\"]\n")},
		"empty/files/README.md": {Data: []byte("x")},
	}}
	_, err := NewRegistry([]Source{src}).Resolve("empty")
	if err == nil || !strings.Contains(err.Error(), "has no files") {
		t.Fatalf("error = %v, want no files error", err)
	}
}

func TestResolveDuplicateOutputPath(t *testing.T) {
	src := Source{Name: "t", FS: fstest.MapFS{
		"dup/template.yaml":    {Data: []byte("name: dup\nversion: \"1.0.0\"\ndescription: x\n")},
		"dup/files/_gitignore": {Data: []byte("a")},
		"dup/files/.gitignore": {Data: []byte("b")},
	}}
	_, err := NewRegistry([]Source{src}).Resolve("dup")
	if err == nil || !strings.Contains(err.Error(), "both produce .gitignore") {
		t.Fatalf("error = %v, want duplicate output error", err)
	}
}

func TestRequiresConstraint(t *testing.T) {
	src := Source{Name: "t", FS: fstest.MapFS{
		"future/template.yaml":   {Data: []byte("name: future\nversion: \"1.0.0\"\ndescription: x\nrequires: \">=2.0.0\"\n")},
		"future/files/README.md": {Data: []byte("x")},
	}}

	if _, err := NewRegistry([]Source{src}, WithCLIVersion("v1.4.0")).Resolve("future"); !errors.Is(err, ErrIncompatible) {
		t.Errorf("v1.4.0: error = %v, want ErrIncompatible", err)
	}
	if _, err := NewRegistry([]Source{src}, WithCLIVersion("2.0.1")).Resolve("future"); err != nil {
		t.Errorf("2.0.1: unexpected error %v", err)
	}
	if _, err := NewRegistry([]Source{src}, WithCLIVersion("dev")).Resolve("future"); err != nil {
		t.Errorf("dev build: unexpected error %v", err)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in, name, constraint string
	}{
		{"basic", "basic", ""},
		{"basic@^1", "basic", "^1"},
		{"go-cli@>=0.2, <1", "go-cli", ">=0.2, <1"},
	}
	for _, tt := range tests {
		name, c := ParseID(tt.in)
		if name != tt.name || c != tt.constraint {
			t.Errorf("ParseID(%q) = (%q, %q), want (%q, %q)", tt.in, name, c, tt.name, tt.constraint)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"_gitignore":         ".gitignore",
		"sub/_npmrc":         "sub/.npmrc",
		"main.go.tmpl":       "main.go",
		"_other":             "_other",
		"docs/guide.md":      "docs/guide.md",
		"cmd/tool/x.go.tmpl": "cmd/tool/x.go",
	}
	for in, want := range tests {
		if got := outputPath(in); got != want {
			t.Errorf("outputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func hasFile(d *Descriptor, p string) bool {
	for _, f := range d.Files {
		if f.Path == p {
			return true
		}
	}
	return false
}
