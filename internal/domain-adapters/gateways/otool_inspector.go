package gateways

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OtoolInspector lists linked libraries by running `otool -L`
type OtoolInspector struct {
	tool string
	run  commandRunner
}

// NewOtoolInspector creates an inspector using the otool binary on PATH
func NewOtoolInspector() *OtoolInspector {
	return &OtoolInspector{tool: "otool", run: runCommand}
}

// Available reports whether the otool binary can be found
func (o *OtoolInspector) Available() bool {
	_, err := exec.LookPath(o.tool)
	return err == nil
}

// LinkedLibraries returns every library path otool reports for path, including
// a dylib's own install name, in the order otool prints them
func (o *OtoolInspector) LinkedLibraries(ctx context.Context, path string) ([]string, error) {
	out, err := o.run(ctx, o.tool, "-L", path)
	if err != nil {
		return nil, fmt.Errorf("otool -L %s: %w", path, err)
	}
	return parseOtoolOutput(string(out)), nil
}

// parseOtoolOutput extracts the path token of each dependency line. Header
// lines ("<file>:" and "<file> (architecture arm64):") end with a colon.
func parseOtoolOutput(out string) []string {
	var libs []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \r")
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		libs = append(libs, fields[0])
	}
	return libs
}
