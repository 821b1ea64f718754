// Package app contains the core application logic. It wires the planner, the
// poller and the renderer sinks for one stack and exposes every operation of
// the tool, decoupled from any specific entrypoint like a CLI.
package app
