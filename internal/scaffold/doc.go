// Package scaffold materializes a resolved template into a target directory.
// It owns the GenerationContext shared by every stage of a run and the fixed
// placeholder token set: text files have each {{token}} replaced in a single
// pass, binary files are copied unchanged. Writes go through a
// billy.Filesystem so the same code runs against disk or memory.
package scaffold
