// Package templates resolves template identifiers to complete, in-memory file
// sets. Templates live in sources (the embedded built-ins and any user
// template directories); each template is a directory holding a template.yaml
// manifest and a files/ tree. Resolution reads and classifies every file up
// front so that nothing is written before the whole template is known to be
// readable.
package templates
