// Package projectname validates candidate project names against the rules
// package registries apply: a name is required, at most MaxLength characters,
// and made of lowercase letters, digits and hyphens with an optional
// "@scope/" prefix. Checks run in that order and the first failing rule is
// the one reported.
package projectname
