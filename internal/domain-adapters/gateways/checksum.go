package gateways

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ChecksumSuffix is appended to a file name to form its checksum sidecar
const ChecksumSuffix = ".sha256"

// checksumWriter implements SHA-256 checksums using pure Go
type checksumWriter struct{}

// NewChecksumWriter creates a new checksum writer
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumWriter() *checksumWriter {
	return &checksumWriter{}
}

// CalculateChecksum calculates the SHA256 checksum of a file
func (c *checksumWriter) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum verifies a file's SHA256 checksum
func (c *checksumWriter) VerifyChecksum(_ context.Context, filePath, expectedSum string) error {
	actualSum, err := c.CalculateChecksum(filePath)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actualSum, strings.TrimSpace(expectedSum)) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actualSum)
	}

	return nil
}

// WriteChecksumFile writes "<sum>  <basename>" to filePath + ".sha256" and
// returns the sidecar path
func (c *checksumWriter) WriteChecksumFile(filePath string) (string, error) {
	sum, err := c.CalculateChecksum(filePath)
	if err != nil {
		return "", err
	}

	sidecar := filePath + ChecksumSuffix
	line := fmt.Sprintf("%s  %s\n", sum, filepath.Base(filePath))
	if err := os.WriteFile(sidecar, []byte(line), 0600); err != nil {
		return "", fmt.Errorf("failed to write checksum file: %w", err)
	}

	return sidecar, nil
}

// ReadChecksumFile returns the checksum recorded in a sidecar file
func (c *checksumWriter) ReadChecksumFile(sidecar string) (string, error) {
	//nolint:gosec // G304: sidecar path is user-provided
	f, err := os.Open(sidecar)
	if err != nil {
		return "", fmt.Errorf("failed to open checksum file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", fmt.Errorf("checksum file is empty: %s", sidecar)
	}

	fields := strings.Fields(scanner.Text())
	if len(fields) == 0 || len(fields[0]) != sha256.Size*2 {
		return "", fmt.Errorf("malformed checksum file: %s", sidecar)
	}

	return fields[0], nil
}
