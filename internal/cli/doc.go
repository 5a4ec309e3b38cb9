// Package cli defines the Cobra command tree for create-agentx. The root
// command creates a project; subcommands list templates, manage settings and
// print build information. Commands only parse flags, gather missing input
// and format output; the run itself belongs to package create.
package cli
