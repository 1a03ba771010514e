// Package gateways defines interfaces for tools that inspect and modify binaries.
package gateways

import "context"

// DependencyInspector lists the libraries a binary links against, as recorded
// in its dynamic-link table (the equivalent of `otool -L`).
type DependencyInspector interface {
	LinkedLibraries(ctx context.Context, path string) ([]string, error)
}

// InstallNameEditor rewrites install names embedded in a Mach-O binary
type InstallNameEditor interface {
	// SetID changes the binary's own install name
	SetID(ctx context.Context, path, id string) error

	// ChangeDependency replaces a referenced library path
	ChangeDependency(ctx context.Context, path, oldRef, newRef string) error
}

// FileCopier copies file bytes from src to dst, creating or overwriting dst
type FileCopier interface {
	CopyFile(src, dst string) error
}
