package gateways

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"

	"github.com/ochairo/depbundle/internal/domain/entities"
)

// Archive formats supported by the packager
const (
	FormatTarGz  = "tar.gz"
	FormatTarZst = "tar.zst"
)

// Packager packages a bundle directory into a distributable archive
type Packager struct{}

// NewPackager creates a new packager
func NewPackager() *Packager {
	return &Packager{}
}

// ArchiveName returns <name>-<version>-<platform>.<format>, dropping a leading "v" from version
func ArchiveName(name, version, platform, format string) string {
	cleanVersion := strings.TrimPrefix(version, "v")
	return fmt.Sprintf("%s-%s-%s.%s", name, cleanVersion, platform, format)
}

// PackageDirectory archives sourceDir into outputDir and returns the archive artifact
func (p *Packager) PackageDirectory(
	ctx context.Context,
	sourceDir, name, version, platform, outputDir, format string,
) (*entities.Artifact, error) {
	if format == "" {
		format = FormatTarGz
	}
	if format != FormatTarGz && format != FormatTarZst {
		return nil, fmt.Errorf("unsupported archive format: %s", format)
	}

	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat bundle directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle path is not a directory: %s", sourceDir)
	}

	if outputDir == "" {
		outputDir = "dist"
	}
	archivePath := filepath.Join(outputDir, ArchiveName(name, version, platform, format))

	if err := p.createArchive(ctx, sourceDir, archivePath, format); err != nil {
		_ = os.Remove(archivePath)
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	return &entities.Artifact{
		Name:     filepath.Base(archivePath),
		Path:     archivePath,
		Platform: platform,
		Type:     "archive",
	}, nil
}

// createArchive writes a compressed tar of sourceDir to archivePath
func (p *Packager) createArchive(ctx context.Context, sourceDir, archivePath, format string) (err error) {
	if err := os.MkdirAll(filepath.Dir(archivePath), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	//nolint:gosec // G304: archivePath is constructed for package output
	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() { err = multierr.Append(err, file.Close()) }()

	var compressor io.WriteCloser
	switch format {
	case FormatTarZst:
		compressor, err = zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
	default:
		compressor = gzip.NewWriter(file)
	}
	defer func() { err = multierr.Append(err, compressor.Close()) }()

	tarWriter := tar.NewWriter(compressor)
	defer func() { err = multierr.Append(err, tarWriter.Close()) }()

	absArchive, _ := filepath.Abs(archivePath)

	return filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// The archive may be written inside the directory being packaged
		if absPath, _ := filepath.Abs(path); absPath == absArchive {
			return nil
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if relPath == "." {
			return nil
		}

		return addTarEntry(tarWriter, path, filepath.ToSlash(relPath), info)
	})
}

// addTarEntry writes one file, directory or symlink into the archive
func addTarEntry(tw *tar.Writer, path, name string, info os.FileInfo) error {
	var linkTarget string
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return fmt.Errorf("failed to read symlink %s: %w", path, err)
		}
		linkTarget = target
	}

	header, err := tar.FileInfoHeader(info, linkTarget)
	if err != nil {
		return fmt.Errorf("failed to create tar header: %w", err)
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	//nolint:gosec // G304: File path from filepath.Walk for packaging
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("failed to write file to tar: %w", err)
	}
	return nil
}
