// Package stack locates stacks and projects inside a KCL workspace.
//
// A workspace root is the nearest directory holding a kcl.mod file. A stack
// is a directory holding a stack.yaml file; its project is the parent
// directory. Names are paths relative to the workspace root, or absolute
// paths when the stack lives outside any workspace.
package stack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/stackgraph/internal/fsutil"
)

const (
	// WorkspaceMarker marks the root of a KCL workspace.
	WorkspaceMarker = "kcl.mod"
	// StackMarker marks a stack directory.
	StackMarker = "stack.yaml"
)

// ErrNotStack is returned when a directory has no stack.yaml.
var ErrNotStack = errors.New("not a stack directory")

// Project is the directory that groups stacks.
type Project struct {
	Name     string
	FullName string
	Dir      string
}

// Stack is a deployable unit the planner operates on.
type Stack struct {
	// Name is the base name of the stack directory.
	Name string
	// FullName is what the planner receives as its workdir argument.
	FullName string
	Dir      string
	// Root is the workspace root, empty when none was found.
	Root    string
	Project Project
}

// WorkDir is the directory the planner runs in.
func (s Stack) WorkDir() string {
	if s.Root != "" {
		return s.Root
	}
	return s.Dir
}

func (s Stack) String() string {
	return s.FullName
}

// Resolve builds the Stack for the directory at path. A path naming a file
// resolves to the directory containing it.
func Resolve(path string) (Stack, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return Stack{}, fmt.Errorf("resolving stack path %q: %w", path, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Stack{}, fmt.Errorf("resolving stack path %q: %w", path, err)
	}
	if !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	if _, err := os.Stat(filepath.Join(dir, StackMarker)); err != nil {
		return Stack{}, fmt.Errorf("%s: %w", dir, ErrNotStack)
	}

	root, ok, err := fsutil.FindUpward(dir, WorkspaceMarker)
	if err != nil {
		return Stack{}, err
	}
	if !ok {
		root = ""
	}

	projectDir := filepath.Dir(dir)
	return Stack{
		Name:     filepath.Base(dir),
		FullName: fullName(root, dir),
		Dir:      dir,
		Root:     root,
		Project: Project{
			Name:     filepath.Base(projectDir),
			FullName: fullName(root, projectDir),
			Dir:      projectDir,
		},
	}, nil
}

// Discover returns every stack below root, ordered by full name.
func Discover(root string) ([]Stack, error) {
	files, err := fsutil.Glob(root, "**/"+StackMarker)
	if err != nil {
		return nil, fmt.Errorf("discovering stacks: %w", err)
	}

	stacks := make([]Stack, 0, len(files))
	for _, f := range files {
		s, err := Resolve(filepath.Dir(f))
		if err != nil {
			return nil, err
		}
		stacks = append(stacks, s)
	}
	return stacks, nil
}

func fullName(root, dir string) string {
	if root == "" {
		return dir
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return dir
	}
	return rel
}
