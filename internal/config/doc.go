// Package config defines the format-agnostic workspace configuration and the
// Loader interface that format-specific packages implement.
//
// A Workspace starts from Default and is then overlaid, in order, by the
// workspace file, the environment and command-line flags.
package config
