package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Checker decides whether a path resolves inside the configured project
// directory. The root is an explicit value owned by the checker, never read
// from ambient process state, so parallel instances with distinct roots can
// coexist (e.g. in tests).
type Checker struct {
	mux  sync.RWMutex
	root string
}

// New creates a checker for the supplied project directory. An empty root is
// allowed; until SetRoot is called every check fails closed.
func New(root string) *Checker {
	ret := &Checker{}
	if root != "" {
		_ = ret.SetRoot(root)
	}
	return ret
}

// SetRoot re-points the checker at a new project directory. The path is
// normalised to an absolute form so later relative resolution is stable.
func (c *Checker) SetRoot(root string) error {
	if root == "" {
		return fmt.Errorf("project directory was empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory %v: %w", root, err)
	}
	c.mux.Lock()
	c.root = abs
	c.mux.Unlock()
	return nil
}

// Root returns the current project directory, empty when unconfigured.
func (c *Checker) Root() string {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.root
}

// IsPathInProject reports whether path resolves inside the project
// directory. Relative paths are anchored to the root, not the process
// working directory, so relative filenames in commands always land in the
// project. Any resolution failure yields false.
func (c *Checker) IsPathInProject(path string) bool {
	root := c.Root()
	if root == "" {
		return false
	}
	if strings.ContainsRune(path, 0) {
		return false
	}
	if strings.HasPrefix(path, "~") {
		return false
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		// different volume or otherwise unresolvable
		return false
	}
	return !strings.HasPrefix(rel, "..")
}

// ResolveInProject validates path and returns the absolute on-disk location
// to operate on. Symlinked components are normalised back inside the root so
// a link cannot redirect a confined write elsewhere.
func (c *Checker) ResolveInProject(path string) (string, error) {
	root := c.Root()
	if root == "" {
		return "", fmt.Errorf("project directory is not configured")
	}
	if !c.IsPathInProject(path) {
		return "", fmt.Errorf("path %q is outside the project directory", path)
	}
	rel := path
	if filepath.IsAbs(path) {
		var err error
		if rel, err = filepath.Rel(root, path); err != nil {
			return "", fmt.Errorf("failed to locate %v in project: %w", path, err)
		}
	}
	resolved, err := securejoin.SecureJoin(root, rel)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %v in project: %w", path, err)
	}
	return resolved, nil
}
