package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ochairo/depbundle/internal/domain/entities"
	"github.com/ochairo/depbundle/internal/domain/interfaces"
	"github.com/ochairo/depbundle/internal/domain/interfaces/gateways"
)

// DefaultInstallNamePrefix points at the Frameworks directory of a macOS app bundle
const DefaultInstallNamePrefix = "@executable_path/../Frameworks/"

// InstallNameFixer rewrites the install names of bundled binaries so they
// resolve their dependencies relative to the bundle instead of build paths
type InstallNameFixer struct {
	inspector gateways.DependencyInspector
	editor    gateways.InstallNameEditor
	filter    *LocationFilter
	prefix    string
	logger    interfaces.Logger
}

// NewInstallNameFixer creates a fixer. An empty prefix uses DefaultInstallNamePrefix.
func NewInstallNameFixer(
	inspector gateways.DependencyInspector,
	editor gateways.InstallNameEditor,
	filter *LocationFilter,
	prefix string,
	logger interfaces.Logger,
) *InstallNameFixer {
	if filter == nil {
		filter = NewLocationFilter()
	}
	if prefix == "" {
		prefix = DefaultInstallNamePrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &InstallNameFixer{
		inspector: inspector,
		editor:    editor,
		filter:    filter,
		prefix:    prefix,
		logger:    interfaces.OrNoOp(logger),
	}
}

// FixAll rewrites each artifact in order, stopping at the first failure
func (f *InstallNameFixer) FixAll(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := f.Fix(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// Fix rewrites the install id and external references of one binary
func (f *InstallNameFixer) Fix(ctx context.Context, path string) error {
	libs, err := f.inspector.LinkedLibraries(ctx, path)
	if err != nil {
		f.logger.Warn("Could not inspect binary, leaving install names unchanged",
			interfaces.F("path", path), interfaces.Err(err))
		return nil
	}

	changes := f.Plan(path, libs)
	f.logger.Debug("Planned install name changes",
		interfaces.F("path", path), interfaces.F("changes", len(changes)))

	for _, change := range changes {
		switch change.Kind {
		case entities.ChangeID:
			f.logger.Info("Changing install id", interfaces.F("path", path), interfaces.F("id", change.New))
			if err := f.editor.SetID(ctx, path, change.New); err != nil {
				return fmt.Errorf("failed to set install id of %s: %w", path, err)
			}
		case entities.ChangeDependency:
			f.logger.Info("Rewriting dependency",
				interfaces.F("path", path),
				interfaces.F("from", change.Old),
				interfaces.F("to", change.New))
			if err := f.editor.ChangeDependency(ctx, path, change.Old, change.New); err != nil {
				return fmt.Errorf("failed to rewrite %s in %s: %w", change.Old, path, err)
			}
		}
	}

	return nil
}

// Plan computes the install name changes for a binary at path given the
// libraries it links against. It has no side effects.
func (f *InstallNameFixer) Plan(path string, libs []string) []entities.InstallNameChange {
	name := filepath.Base(path)
	changes := make([]entities.InstallNameChange, 0, len(libs))

	for _, ref := range libs {
		if !f.rewritable(ref) {
			continue
		}

		if filepath.Base(ref) == name {
			changes = append(changes, entities.InstallNameChange{
				Kind: entities.ChangeID,
				New:  f.prefix + name,
			})
			continue
		}

		changes = append(changes, entities.InstallNameChange{
			Kind: entities.ChangeDependency,
			Old:  ref,
			New:  f.relocate(ref),
		})
	}

	return changes
}

// rewritable selects references that point outside the bundle: non-system
// locations, bare library names and loader-relative paths. Absolute system
// paths and references already relative to the executable are left alone.
func (f *InstallNameFixer) rewritable(ref string) bool {
	switch {
	case ref == "":
		return false
	case f.filter.IsNonSystem(ref):
		return true
	case strings.HasPrefix(ref, "lib"):
		return true
	case strings.HasPrefix(ref, "/"), strings.HasPrefix(ref, "@executable_path"):
		return false
	default:
		return true
	}
}

// relocate maps a referenced library onto the bundle prefix. Framework
// references keep their path from the .framework directory down.
func (f *InstallNameFixer) relocate(ref string) string {
	if idx := strings.Index(ref, ".framework"); idx >= 0 {
		frameworkDir := filepath.Dir(ref[:idx])
		rest := strings.TrimPrefix(ref, frameworkDir)
		return f.prefix + strings.TrimPrefix(rest, "/")
	}

	if !strings.Contains(ref, "/") {
		return f.prefix + ref
	}

	return f.prefix + filepath.Base(ref)
}
