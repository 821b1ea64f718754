// Package hcl provides the HCL implementation of config.Loader. It reads the
// stackgraph.hcl file of a workspace and overlays every attribute it sets
// onto a base configuration.
package hcl
