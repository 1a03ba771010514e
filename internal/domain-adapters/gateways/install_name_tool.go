package gateways

import (
	"context"
	"fmt"
)

// InstallNameTool rewrites Mach-O install names with `install_name_tool`
type InstallNameTool struct {
	tool string
	run  commandRunner
}

// NewInstallNameTool creates an editor using install_name_tool on PATH
func NewInstallNameTool() *InstallNameTool {
	return &InstallNameTool{tool: "install_name_tool", run: runCommand}
}

// SetID runs `install_name_tool -id <id> <path>`
func (t *InstallNameTool) SetID(ctx context.Context, path, id string) error {
	if _, err := t.run(ctx, t.tool, "-id", id, path); err != nil {
		return fmt.Errorf("install_name_tool -id %s: %w", id, err)
	}
	return nil
}

// ChangeDependency runs `install_name_tool -change <old> <new> <path>`
func (t *InstallNameTool) ChangeDependency(ctx context.Context, path, oldRef, newRef string) error {
	if _, err := t.run(ctx, t.tool, "-change", oldRef, newRef, path); err != nil {
		return fmt.Errorf("install_name_tool -change %s %s: %w", oldRef, newRef, err)
	}
	return nil
}
