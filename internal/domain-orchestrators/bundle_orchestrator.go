// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ochairo/depbundle/internal/domain-adapters/gateways"
	"github.com/ochairo/depbundle/internal/domain/entities"
	"github.com/ochairo/depbundle/internal/domain/interfaces"
	bin "github.com/ochairo/depbundle/internal/domain/interfaces/gateways"
	"github.com/ochairo/depbundle/internal/domain/interfaces/repositories"
	"github.com/ochairo/depbundle/internal/domain/services"
)

// Importer copies files from installed dependency packages into the output directory
type Importer interface {
	Import(ctx context.Context, packages []string, rules []entities.ImportRule, outputDir string) ([]string, error)
}

// SeedFinder expands seed patterns into binary paths
type SeedFinder interface {
	FindSeeds(baseDir string, patterns []string) ([]string, error)
}

// ManifestWriter records the contents of a bundle directory
type ManifestWriter interface {
	WriteManifest(bundleDir, name, version, platform string, requirements []string) (*entities.Manifest, string, error)
}

// Packager archives a bundle directory
type Packager interface {
	PackageDirectory(ctx context.Context, sourceDir, name, version, platform, outputDir, format string) (*entities.Artifact, error)
}

// ChecksumWriter writes checksum sidecar files
type ChecksumWriter interface {
	WriteChecksumFile(filePath string) (string, error)
}

// Signer creates detached signatures
type Signer interface {
	SignFile(filePath, keyPath string, passphrase []byte) (string, error)
}

// HookRunner executes recipe hook scripts
type HookRunner interface {
	RunHook(ctx context.Context, name, script string, env gateways.HookEnv, timeout time.Duration) error
}

// BundleOrchestratorDeps groups the collaborators of the orchestrator
type BundleOrchestratorDeps struct {
	Recipes        repositories.RecipeRepository
	Importer       Importer
	SeedFinder     SeedFinder
	Inspector      bin.DependencyInspector
	Copier         bin.FileCopier
	Editor         bin.InstallNameEditor
	ManifestWriter ManifestWriter
	Packager       Packager
	Checksums      ChecksumWriter
	Signer         Signer
	Hooks          HookRunner
	Logger         interfaces.Logger
}

// BundleOrchestratorConfig holds configuration for the orchestrator
type BundleOrchestratorConfig struct {
	OutputDir      string // bundle staging directory
	DistDir        string // receives the archive and sidecars
	Format         string // archive format, see gateways.FormatTarGz
	SigningKey     string // optional private key file
	Passphrase     []byte
	SkipPackage    bool
	DefaultTimeout time.Duration
}

// BundleOrchestrator coordinates the complete bundle workflow
type BundleOrchestrator struct {
	deps   BundleOrchestratorDeps
	config BundleOrchestratorConfig
	logger interfaces.Logger
}

// NewBundleOrchestrator creates a new bundle orchestrator
func NewBundleOrchestrator(deps BundleOrchestratorDeps, config BundleOrchestratorConfig) *BundleOrchestrator {
	if config.OutputDir == "" {
		config.OutputDir = "bundle"
	}
	if config.DistDir == "" {
		config.DistDir = "dist"
	}
	if config.Format == "" {
		config.Format = gateways.FormatTarGz
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = 10 * time.Minute
	}

	return &BundleOrchestrator{
		deps:   deps,
		config: config,
		logger: interfaces.OrNoOp(deps.Logger),
	}
}

// BundleResult contains the result of a bundle build
type BundleResult struct {
	Recipe         *entities.Recipe
	Platform       entities.Platform
	Resolved       *services.ResolvedRequirements
	ImportedFiles  []string
	Closure        *entities.ClosureReport
	Manifest       *entities.Manifest
	ManifestPath   string
	Archive        *entities.Artifact
	ChecksumPath   string
	SignaturePath  string
	ImportDuration time.Duration
	FixDuration    time.Duration
	TotalDuration  time.Duration
	Success        bool
	Error          error
}

// BuildFromRepository loads a recipe by name and builds its bundle
func (o *BundleOrchestrator) BuildFromRepository(ctx context.Context, name string, platform entities.Platform) (*BundleResult, error) {
	if o.deps.Recipes == nil {
		return &BundleResult{}, fmt.Errorf("no recipe repository configured")
	}

	def, err := o.deps.Recipes.GetRecipe(ctx, name)
	if err != nil {
		result := &BundleResult{Error: fmt.Errorf("failed to load recipe: %w", err)}
		return result, result.Error
	}

	return o.BuildBundle(ctx, def, platform)
}

// BuildBundle executes the complete bundle workflow for a recipe
func (o *BundleOrchestrator) BuildBundle(ctx context.Context, def *entities.Recipe, platform entities.Platform) (*BundleResult, error) {
	startTime := time.Now()
	result := &BundleResult{Recipe: def, Platform: platform}

	fail := func(format string, err error) (*BundleResult, error) {
		result.Error = fmt.Errorf(format, err)
		o.logger.Error("Bundle build failed", interfaces.F("recipe", def.Name), interfaces.Err(result.Error))
		return result, result.Error
	}

	// Step 1: Resolve platform-specific requirements
	resolved := services.ResolveRequirements(def, platform)
	result.Resolved = resolved
	o.logger.Info("Resolved requirements",
		interfaces.F("recipe", def.Name),
		interfaces.F("platform", platform.String()),
		interfaces.F("requirements", resolved.Refs()))

	if err := os.MkdirAll(o.config.OutputDir, 0750); err != nil {
		return fail("failed to create output directory: %w", err)
	}

	// Step 2: Import files from dependency packages
	importStart := time.Now()
	imported, err := o.deps.Importer.Import(ctx, resolved.Names(), resolved.Imports, o.config.OutputDir)
	result.ImportedFiles = imported
	if err != nil {
		return fail("import failed: %w", err)
	}
	result.ImportDuration = time.Since(importStart)

	outputDir, err := filepath.Abs(o.config.OutputDir)
	if err != nil {
		return fail("failed to resolve output directory: %w", err)
	}
	hookEnv := gateways.HookEnv{
		BundleDir: outputDir,
		OutputDir: outputDir,
		Package:   def.Name,
		Version:   def.Version,
		Platform:  platform.String(),
	}
	hookTimeout := o.config.DefaultTimeout
	if def.Hooks.TimeoutMinutes > 0 {
		hookTimeout = time.Duration(def.Hooks.TimeoutMinutes) * time.Minute
	}

	// Step 3: Make the macOS bundle self-contained
	if platform.IsDarwin() && len(def.Bundle.Seeds) > 0 {
		fixStart := time.Now()
		report, bundleDir, err := o.relocateDependencies(ctx, def)
		result.Closure = report
		if err != nil {
			return fail("relocating dependencies failed: %w", err)
		}
		result.FixDuration = time.Since(fixStart)

		if hookEnv.BundleDir, err = filepath.Abs(bundleDir); err != nil {
			return fail("failed to resolve bundle directory: %w", err)
		}
		if err := o.runHook(ctx, "post_fix", def.Hooks.PostFix, hookEnv, hookTimeout); err != nil {
			return fail("%w", err)
		}
	} else if len(def.Bundle.Seeds) > 0 {
		o.logger.Info("Skipping dependency relocation on non-macOS platform",
			interfaces.F("platform", platform.String()))
	}

	// Step 4: Record bundle contents
	manifest, manifestPath, err := o.deps.ManifestWriter.WriteManifest(
		o.config.OutputDir, def.Name, def.Version, platform.String(), resolved.Refs())
	if err != nil {
		return fail("manifest failed: %w", err)
	}
	result.Manifest = manifest
	result.ManifestPath = manifestPath

	// Step 5: Package, checksum and sign
	if !o.config.SkipPackage {
		if err := o.packageBundle(ctx, def, platform, result); err != nil {
			return fail("%w", err)
		}

		if err := o.runHook(ctx, "post_package", def.Hooks.PostPackage, hookEnv, hookTimeout); err != nil {
			return fail("%w", err)
		}
	}

	result.Success = true
	result.TotalDuration = time.Since(startTime)
	return result, nil
}

// relocateDependencies copies the dependency closure of the recipe's seeds
// into the bundle destination and rewrites install names of every copy and
// of the seeds themselves
func (o *BundleOrchestrator) relocateDependencies(ctx context.Context, def *entities.Recipe) (*entities.ClosureReport, string, error) {
	seeds, err := o.deps.SeedFinder.FindSeeds(o.config.OutputDir, def.Bundle.Seeds)
	if err != nil {
		return nil, "", err
	}

	destination := def.Bundle.Destination
	if destination == "" {
		destination = "Frameworks"
	}
	bundleDir := filepath.Join(o.config.OutputDir, destination)
	if err := os.MkdirAll(bundleDir, 0750); err != nil {
		return nil, bundleDir, fmt.Errorf("failed to create %s: %w", bundleDir, err)
	}

	filter := services.NewLocationFilter(def.Bundle.NonSystemPatterns...)

	copier := services.NewClosureCopier(o.deps.Inspector, o.deps.Copier, filter, o.logger)
	report, err := copier.ResolveAndCopy(ctx, bundleDir, seeds)
	if err != nil {
		return report, bundleDir, err
	}

	fixer := services.NewInstallNameFixer(o.deps.Inspector, o.deps.Editor, filter, def.Bundle.InstallNamePrefix, o.logger)
	// Seeds ship in the archive next to the destination, so they are fixed in place
	targets := report.Targets()
	for _, seed := range seeds {
		if !slices.Contains(targets, seed) {
			targets = append(targets, seed)
		}
	}
	if err := fixer.FixAll(ctx, targets); err != nil {
		return report, bundleDir, err
	}

	return report, bundleDir, nil
}

func (o *BundleOrchestrator) packageBundle(ctx context.Context, def *entities.Recipe, platform entities.Platform, result *BundleResult) error {
	archive, err := o.deps.Packager.PackageDirectory(ctx, o.config.OutputDir, def.Name, def.Version,
		platform.String(), o.config.DistDir, o.config.Format)
	if err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}
	result.Archive = archive

	checksumPath, err := o.deps.Checksums.WriteChecksumFile(archive.Path)
	if err != nil {
		return fmt.Errorf("checksum failed: %w", err)
	}
	result.ChecksumPath = checksumPath

	if o.config.SigningKey != "" {
		if o.deps.Signer == nil {
			return fmt.Errorf("signing key given but no signer configured")
		}
		sigPath, err := o.deps.Signer.SignFile(archive.Path, o.config.SigningKey, o.config.Passphrase)
		if err != nil {
			return fmt.Errorf("signing failed: %w", err)
		}
		result.SignaturePath = sigPath
	}

	return nil
}

func (o *BundleOrchestrator) runHook(ctx context.Context, name, script string, env gateways.HookEnv, timeout time.Duration) error {
	if script == "" || o.deps.Hooks == nil {
		return nil
	}
	return o.deps.Hooks.RunHook(ctx, name, script, env, timeout)
}

// GetBundleSummary returns a human-readable summary of the bundle build
func (r *BundleResult) GetBundleSummary() string {
	if !r.Success {
		return fmt.Sprintf("Bundle failed: %v", r.Error)
	}

	summary := fmt.Sprintf(`Bundle successful!
Recipe: %s %s
Platform: %s
Requirements: %v
Imported files: %d
Import: %v
Total: %v`,
		r.Recipe.Name,
		r.Recipe.Version,
		r.Platform,
		r.Resolved.Refs(),
		len(r.ImportedFiles),
		r.ImportDuration,
		r.TotalDuration,
	)

	if r.Closure != nil {
		summary += fmt.Sprintf("\nRelocated libraries: %d (fix: %v)", len(r.Closure.Copied), r.FixDuration)
		if len(r.Closure.Failures) > 0 {
			summary += fmt.Sprintf("\nUninspectable artifacts: %d", len(r.Closure.Failures))
		}
		if len(r.Closure.Collisions) > 0 {
			summary += fmt.Sprintf("\nFile name collisions: %d", len(r.Closure.Collisions))
		}
	}
	if r.Archive != nil {
		summary += fmt.Sprintf("\nArchive: %s", r.Archive.Path)
	}
	if r.SignaturePath != "" {
		summary += fmt.Sprintf("\nSignature: %s", r.SignaturePath)
	}

	return summary
}
