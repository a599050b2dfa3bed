// Package sandbox implements the path confinement check that keeps every
// file operation and command-referenced path inside a single configured
// project directory. The checker fails closed: when no root is configured,
// or a candidate path cannot be resolved, it reports the path as outside
// the project.
package sandbox
