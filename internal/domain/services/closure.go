package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/depbundle/internal/domain/entities"
	"github.com/ochairo/depbundle/internal/domain/interfaces"
	"github.com/ochairo/depbundle/internal/domain/interfaces/gateways"
)

// ErrNoSeeds is returned when a closure run is started without seed artifacts
var ErrNoSeeds = errors.New("no seed artifacts given")

// ClosureCopier copies a set of seed binaries and every non-system library
// they transitively link against into one directory
type ClosureCopier struct {
	inspector gateways.DependencyInspector
	copier    gateways.FileCopier
	filter    *LocationFilter
	logger    interfaces.Logger
}

// NewClosureCopier creates a closure copier. A nil filter uses the default
// non-system patterns and a nil logger discards output.
func NewClosureCopier(
	inspector gateways.DependencyInspector,
	copier gateways.FileCopier,
	filter *LocationFilter,
	logger interfaces.Logger,
) *ClosureCopier {
	if filter == nil {
		filter = NewLocationFilter()
	}
	return &ClosureCopier{
		inspector: inspector,
		copier:    copier,
		filter:    filter,
		logger:    interfaces.OrNoOp(logger),
	}
}

// ResolveAndCopy copies every seed and its external dependency closure into
// destination. Files are identified by base filename: the first artifact with
// a given name wins and later ones are skipped, even if their contents differ.
//
// A failed dependency inspection is logged and treated as "no dependencies".
// A failed copy aborts the run; files copied before it are left in place.
func (c *ClosureCopier) ResolveAndCopy(ctx context.Context, destination string, seeds []string) (*entities.ClosureReport, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}

	report := &entities.ClosureReport{Destination: destination}
	copied := entities.NewCopySet()

	// Stack order: the last pushed path is processed first
	pending := make([]string, len(seeds))
	copy(pending, seeds)

	for len(pending) > 0 {
		path := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		name := filepath.Base(path)
		if copied.Has(name) {
			c.noteCollision(report, copied, name, path)
			continue
		}

		target := filepath.Join(destination, name)
		c.logger.Info("Copying file", interfaces.F("source", path), interfaces.F("target", target))
		if err := c.copier.CopyFile(path, target); err != nil {
			return report, fmt.Errorf("failed to copy %s: %w", path, err)
		}
		copied.Mark(name, path)
		report.Copied = append(report.Copied, entities.CopiedArtifact{
			Name:   name,
			Source: path,
			Target: target,
		})

		inspection := c.ListExternalDependencies(ctx, path)
		if inspection.Failed() {
			report.Failures = append(report.Failures, inspection)
			continue
		}
		pending = append(pending, inspection.Dependencies...)
	}

	c.logger.Info("Dependency closure complete",
		interfaces.F("destination", destination),
		interfaces.F("copied", copied.Len()),
		interfaces.F("inspection_failures", len(report.Failures)),
		interfaces.F("collisions", len(report.Collisions)))

	return report, nil
}

// ListExternalDependencies returns the non-system libraries path links against.
// Inspection errors are reported in the result, never returned.
func (c *ClosureCopier) ListExternalDependencies(ctx context.Context, path string) entities.Inspection {
	libs, err := c.inspector.LinkedLibraries(ctx, path)
	if err != nil {
		c.logger.Warn("Could not inspect dependencies, assuming none",
			interfaces.F("path", path), interfaces.Err(err))
		return entities.Inspection{Path: path, Err: err}
	}

	deps := c.filter.Filter(libs)
	c.logger.Debug("Inspected dependencies",
		interfaces.F("path", path),
		interfaces.F("linked", len(libs)),
		interfaces.F("external", len(deps)))

	return entities.Inspection{Path: path, Dependencies: deps}
}

// noteCollision flags a skipped path whose base name was already copied from a
// different location. Same-file references (cycles, self ids) are not collisions.
func (c *ClosureCopier) noteCollision(report *entities.ClosureReport, copied *entities.CopySet, name, path string) {
	kept, _ := copied.Source(name)
	if samePath(kept, path) {
		return
	}
	for _, existing := range report.Collisions {
		if existing.Name == name && samePath(existing.Skipped, path) {
			return
		}
	}

	c.logger.Warn("Skipping artifact with an already copied file name",
		interfaces.F("name", name),
		interfaces.F("kept", kept),
		interfaces.F("skipped", path))
	report.Collisions = append(report.Collisions, entities.Collision{
		Name:    name,
		Kept:    kept,
		Skipped: path,
	})
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}

	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
