// Package postsetup runs the optional steps that follow file generation:
// dependency installation, then version-control initialization. Steps run
// strictly in order because later steps may depend on files produced by
// earlier ones (a lockfile should be part of the initial commit). A failing
// step halts the sequence; rolling back generated files is left to the caller.
package postsetup
