package scaffold

import "strings"

// Placeholder token names. In template text each appears as {{name}}.
const (
	TokenProjectName    = "projectName"
	TokenProjectDir     = "projectDir"
	TokenDisplayName    = "displayName"
	TokenDescription    = "description"
	TokenAuthor         = "author"
	TokenLicense        = "license"
	TokenVersion        = "version"
	TokenYear           = "year"
	TokenModulePath     = "modulePath"
	TokenPackageManager = "packageManager"
)

// TokenNames lists the fixed token set.
var TokenNames = []string{
	TokenProjectName,
	TokenProjectDir,
	TokenDisplayName,
	TokenDescription,
	TokenAuthor,
	TokenLicense,
	TokenVersion,
	TokenYear,
	TokenModulePath,
	TokenPackageManager,
}

// Tokens maps token names to their substitution values.
type Tokens map[string]string

// Placeholder returns the marker for a token name as it appears in templates.
func Placeholder(name string) string {
	return "{{" + name + "}}"
}

// Substituter replaces placeholders in one left-to-right pass. Substituted
// values are never rescanned, and markers that are not registered tokens
// are left as they are.
type Substituter struct {
	replacer *strings.Replacer
}

// NewSubstituter builds a Substituter from tokens. Only names in TokenNames
// are substituted.
func NewSubstituter(tokens Tokens) *Substituter {
	pairs := make([]string, 0, 2*len(TokenNames))
	for _, name := range TokenNames {
		if value, ok := tokens[name]; ok {
			pairs = append(pairs, Placeholder(name), value)
		}
	}
	return &Substituter{replacer: strings.NewReplacer(pairs...)}
}

// Replace substitutes every registered placeholder in s.
func (s *Substituter) Replace(in string) string {
	return s.replacer.Replace(in)
}

// ReplaceBytes is Replace for file content.
func (s *Substituter) ReplaceBytes(in []byte) []byte {
	return []byte(s.replacer.Replace(string(in)))
}
