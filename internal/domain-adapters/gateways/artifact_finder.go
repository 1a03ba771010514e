package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/depbundle/internal/external-adapters/gpg"
)

// ArtifactFinder provides utilities for locating seed binaries and bundle archives
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// FindSeeds expands seed glob patterns relative to baseDir into regular files.
// Order follows the patterns; matches of one pattern are sorted. A pattern
// that matches nothing is an error so that a missing binary is not silently
// left out of the bundle.
func (f *ArtifactFinder) FindSeeds(baseDir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var seeds []string

	for _, pattern := range patterns {
		fullPattern := filepath.Join(baseDir, pattern)
		matches, err := filepath.Glob(fullPattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		sort.Strings(matches)

		found := 0
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			found++
			if !seen[m] {
				seen[m] = true
				seeds = append(seeds, m)
			}
		}
		if found == 0 {
			return nil, fmt.Errorf("seed pattern %s matched no files in %s", pattern, baseDir)
		}
	}

	return seeds, nil
}

// FindByGlob returns a bundle's archives and their sidecars in distDir
// Pattern: name-version-*.tar.{gz,zst}{,.sha256,.asc}
func (f *ArtifactFinder) FindByGlob(distDir, name, version string) ([]string, error) {
	versionClean := strings.TrimPrefix(version, "v")

	var artifacts []string
	for _, format := range []string{FormatTarGz, FormatTarZst} {
		for _, suffix := range []string{"", ChecksumSuffix, gpg.SignatureSuffix} {
			pattern := fmt.Sprintf("%s-%s-*.%s%s", name, versionClean, format, suffix)
			matches, err := filepath.Glob(filepath.Join(distDir, pattern))
			if err != nil {
				return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
			}
			artifacts = append(artifacts, matches...)
		}
	}

	sort.Strings(artifacts)
	return artifacts, nil
}
