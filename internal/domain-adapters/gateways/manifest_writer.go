package gateways

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ochairo/depbundle/internal/domain/entities"
)

// ManifestFileName is the manifest written at the root of every bundle
const ManifestFileName = "bundle-manifest.json"

// manifestWriter records bundle contents with their SHA-256 sums
type manifestWriter struct {
	checksums *checksumWriter
	now       func() time.Time
	newID     func() string
}

// NewManifestWriter creates a new manifest writer
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewManifestWriter() *manifestWriter {
	return &manifestWriter{
		checksums: NewChecksumWriter(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// BuildManifest describes every regular file below bundleDir
func (w *manifestWriter) BuildManifest(bundleDir, name, version, platform string, requirements []string) (*entities.Manifest, error) {
	manifest := &entities.Manifest{
		BundleID:     w.newID(),
		Name:         name,
		Version:      version,
		Platform:     platform,
		Requirements: append([]string{}, requirements...),
		Files:        []entities.ManifestFile{},
		CreatedAt:    w.now().UTC(),
	}

	err := filepath.WalkDir(bundleDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(bundleDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if rel == ManifestFileName {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		sum, err := w.checksums.CalculateChecksum(path)
		if err != nil {
			return err
		}

		manifest.Files = append(manifest.Files, entities.ManifestFile{
			Path:   filepath.ToSlash(rel),
			Size:   info.Size(),
			SHA256: sum,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bundle: %w", err)
	}

	return manifest, nil
}

// WriteManifest builds the manifest and stores it as bundleDir/bundle-manifest.json
func (w *manifestWriter) WriteManifest(bundleDir, name, version, platform string, requirements []string) (*entities.Manifest, string, error) {
	manifest, err := w.BuildManifest(bundleDir, name, version, platform, requirements)
	if err != nil {
		return nil, "", err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(bundleDir, ManifestFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return nil, "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return manifest, path, nil
}
