package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/ochairo/depbundle/internal/domain/interfaces"
)

// ScriptExecutor runs recipe hook scripts through /bin/sh
type ScriptExecutor struct {
	defaultTimeout time.Duration
	logger         interfaces.Logger
}

// NewScriptExecutor creates a new script executor
func NewScriptExecutor(logger interfaces.Logger) *ScriptExecutor {
	return &ScriptExecutor{
		defaultTimeout: 10 * time.Minute,
		logger:         interfaces.OrNoOp(logger),
	}
}

// ExecuteScriptConfig contains configuration for executing a shell script.
type ExecuteScriptConfig struct {
	Script      string
	WorkingDir  string
	Env         map[string]string
	Timeout     time.Duration
	Description string
}

// ExecuteResult contains the result of script execution
type ExecuteResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// HookEnv is the environment exported to bundle hooks
type HookEnv struct {
	BundleDir string
	OutputDir string
	Package   string
	Version   string
	Platform  string
}

// Vars returns the hook environment as variable assignments
func (h HookEnv) Vars() map[string]string {
	return map[string]string{
		"BUNDLE_DIR": h.BundleDir,
		"OUTPUT_DIR": h.OutputDir,
		"PACKAGE":    h.Package,
		"VERSION":    h.Version,
		"PLATFORM":   h.Platform,
	}
}

// ExecuteScript runs a shell script with the given configuration
func (se *ScriptExecutor) ExecuteScript(ctx context.Context, config ExecuteScriptConfig) *ExecuteResult {
	startTime := time.Now()
	result := &ExecuteResult{}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = se.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: Script execution is intentional and controlled by recipe configuration
	cmd := exec.CommandContext(execCtx, "/bin/sh", "-c", config.Script)
	if config.WorkingDir != "" {
		cmd.Dir = config.WorkingDir
	}

	env := os.Environ()
	keys := make([]string, 0, len(config.Env))
	for key := range config.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env = append(env, fmt.Sprintf("%s=%s", key, config.Env[key]))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if config.Description != "" {
		se.logger.Info("Executing hook", interfaces.F("hook", config.Description))
	}

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		switch {
		case execCtx.Err() == context.DeadlineExceeded:
			result.Error = fmt.Errorf("script execution timeout after %v", timeout)
			result.ExitCode = -1
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		default:
			result.ExitCode = -1
		}
		return result
	}

	result.Success = true
	return result
}

// RunHook executes a named recipe hook. An empty script is a no-op.
func (se *ScriptExecutor) RunHook(ctx context.Context, name, script string, env HookEnv, timeout time.Duration) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if err := se.ValidateScript(script); err != nil {
		return fmt.Errorf("%s hook rejected: %w", name, err)
	}

	result := se.ExecuteScript(ctx, ExecuteScriptConfig{
		Script:      script,
		WorkingDir:  env.OutputDir,
		Env:         env.Vars(),
		Timeout:     timeout,
		Description: name,
	})

	if result.Stdout != "" {
		se.logger.Debug("Hook output", interfaces.F("hook", name), interfaces.F("stdout", result.Stdout))
	}

	if !result.Success {
		return fmt.Errorf("%s hook failed (exit %d): %w\nStderr: %s",
			name, result.ExitCode, result.Error, result.Stderr)
	}

	se.logger.Info("Hook completed", interfaces.F("hook", name), interfaces.F("duration", result.Duration))
	return nil
}

// ValidateScript performs basic validation on a shell script
func (se *ScriptExecutor) ValidateScript(script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("script is empty")
	}

	dangerous := []string{
		"rm -rf /",
		"mkfs",
		"dd if=/dev/zero",
		":(){:|:&};:", // fork bomb
	}

	for _, pattern := range dangerous {
		if strings.Contains(script, pattern) {
			return fmt.Errorf("script contains potentially dangerous pattern: %s", pattern)
		}
	}

	return nil
}
