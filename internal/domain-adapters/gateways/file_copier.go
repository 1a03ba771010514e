package gateways

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// fileCopier copies file contents, replacing whatever exists at the destination
type fileCopier struct{}

// NewFileCopier creates a new file copier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewFileCopier() *fileCopier {
	return &fileCopier{}
}

// CopyFile copies src to dst following symlinks at src. The destination keeps
// the source permission bits plus owner write, so install names can be
// rewritten afterwards even when the source is read-only (Homebrew dylibs).
// The copy is written to a temporary file and renamed into place.
func (c *fileCopier) CopyFile(src, dst string) (err error) {
	//nolint:gosec // G304: src is an artifact path chosen by the caller
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory: %s", src)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return multierr.Append(fmt.Errorf("failed to copy contents: %w", err), tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush destination: %w", err)
	}
	if err = os.Chmod(tmpName, info.Mode().Perm()|0200); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}
