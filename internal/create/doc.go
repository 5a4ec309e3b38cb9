// Package create drives a single scaffolding run: validate the project name,
// resolve the template, materialize files and run post-setup steps.
//
// A run moves through the states
//
//	Idle -> Validating -> Resolving -> Materializing -> PostSetup -> Done
//
// and may drop to Failed from any of them. The Orchestrator is the only
// component that deletes anything: a target directory created by the run is
// removed when the run fails or is cancelled before post-setup. Post-setup
// failures keep the generated files.
package create
