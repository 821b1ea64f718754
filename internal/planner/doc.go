// Package planner drives the external infrastructure planner as a
// subprocess.
//
// Kusion wraps the planner's preview, apply, destroy and compile commands.
// Preview decodes the planner's JSON output into a change order; the other
// operations stream their output to the user-visible output channel. Every
// command is executed through a Runner so tests can substitute a fake.
package planner
