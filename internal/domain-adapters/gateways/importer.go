package gateways

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ochairo/depbundle/internal/domain/entities"
	"github.com/ochairo/depbundle/internal/domain/interfaces"
	"github.com/ochairo/depbundle/internal/domain/interfaces/gateways"
)

// Importer copies files out of installed dependency packages following a
// recipe's import rules. Packages are expected at <depsRoot>/<package name>.
type Importer struct {
	depsRoot string
	copier   gateways.FileCopier
	logger   interfaces.Logger
}

// NewImporter creates an importer reading packages below depsRoot
func NewImporter(depsRoot string, copier gateways.FileCopier, logger interfaces.Logger) *Importer {
	if copier == nil {
		copier = NewFileCopier()
	}
	return &Importer{
		depsRoot: depsRoot,
		copier:   copier,
		logger:   interfaces.OrNoOp(logger),
	}
}

// Import applies rules for every package in packages and returns the written paths
func (im *Importer) Import(ctx context.Context, packages []string, rules []entities.ImportRule, outputDir string) ([]string, error) {
	var written []string

	for _, rule := range rules {
		if rule.Pattern == "" {
			return written, fmt.Errorf("import rule into %q has no pattern", rule.Dst)
		}
		if _, err := filepath.Match(rule.Pattern, ""); err != nil {
			return written, fmt.Errorf("invalid import pattern %q: %w", rule.Pattern, err)
		}

		for _, pkg := range packages {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			if !ruleAppliesTo(rule, pkg) {
				continue
			}

			files, err := im.importPackage(pkg, rule, outputDir)
			written = append(written, files...)
			if err != nil {
				return written, err
			}
		}
	}

	im.logger.Info("Imported dependency files", interfaces.F("files", len(written)), interfaces.F("output", outputDir))
	return written, nil
}

func (im *Importer) importPackage(pkg string, rule entities.ImportRule, outputDir string) ([]string, error) {
	pkgRoot := filepath.Join(im.depsRoot, pkg)
	if info, err := os.Stat(pkgRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("package %s is not installed in %s", pkg, im.depsRoot)
	}

	srcDir := filepath.Join(pkgRoot, rule.Src)
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		im.logger.Debug("Import source missing, skipping",
			interfaces.F("package", pkg), interfaces.F("src", rule.Src))
		return nil, nil
	}

	dstDir := filepath.Join(outputDir, rule.Dst)
	if rule.KeepFolder {
		dstDir = filepath.Join(dstDir, pkg)
	}

	var written []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matched, _ := filepath.Match(rule.Pattern, d.Name())
		if !matched {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		target := filepath.Join(dstDir, rel)

		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if err := copySymlink(path, target); err != nil {
				return err
			}
		} else if d.Type().IsRegular() {
			if err := im.copier.CopyFile(path, target); err != nil {
				return fmt.Errorf("failed to import %s: %w", path, err)
			}
		} else {
			return nil
		}

		written = append(written, target)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("failed to import from %s: %w", pkg, err)
	}

	im.logger.Debug("Imported package files",
		interfaces.F("package", pkg),
		interfaces.F("pattern", rule.Pattern),
		interfaces.F("files", len(written)))
	return written, nil
}

// copySymlink recreates the link at target, replacing any existing entry
func copySymlink(src, target string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read symlink: %w", err)
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}

func ruleAppliesTo(rule entities.ImportRule, pkg string) bool {
	if len(rule.Packages) == 0 {
		return true
	}
	for _, p := range rule.Packages {
		if p == pkg {
			return true
		}
	}
	return false
}
