package config

import "context"

// Loader reads workspace configuration files.
type Loader interface {
	// Load overlays the configuration file of root, if any, onto base.
	// A missing file is not an error.
	Load(ctx context.Context, root string, base *Workspace) (*Workspace, error)
	// LoadFile overlays an explicitly named file onto base.
	LoadFile(ctx context.Context, path string, base *Workspace) (*Workspace, error)
}
