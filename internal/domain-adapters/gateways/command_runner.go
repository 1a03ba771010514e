// Package gateways provides adapter implementations for external services and tools.
package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// commandRunner runs an external tool and returns its stdout
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// runCommand executes name with args, folding stderr into the returned error
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	//nolint:gosec // G204: tool name is fixed by the caller, arguments are file paths
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.Bytes(), nil
}
