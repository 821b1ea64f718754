// Package renderer defines the messages a graph view consumes and the sinks
// that deliver them.
//
// A session sends one init message and then one update message per poll
// cycle. Every update carries the complete laid-out scene, so a view only
// draws what it receives and never computes levels or positions itself.
package renderer
