package gateways

import (
	"context"
	"debug/macho"
	"fmt"
	"io"
	"strings"

	"github.com/ochairo/depbundle/internal/domain/interfaces/gateways"
)

// loadCmdIDDylib is LC_ID_DYLIB, which debug/macho does not decode
const loadCmdIDDylib macho.LoadCmd = 0xd

// machoInspector reads Mach-O load commands using debug/macho.
// No external tools required, so it also works off macOS.
type machoInspector struct{}

// NewMachOInspector creates a pure Go linked-library reader
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewMachOInspector() *machoInspector {
	return &machoInspector{}
}

// LinkedLibraries returns the dylib's install id (if any) followed by its
// imported libraries, mirroring `otool -L`. Fat binaries report the union of
// their slices without duplicates.
func (m *machoInspector) LinkedLibraries(_ context.Context, path string) ([]string, error) {
	files, closer, err := openMachO(path)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on read-only file
	defer closer.Close()

	seen := make(map[string]bool)
	var libs []string
	add := func(lib string) {
		if lib != "" && !seen[lib] {
			seen[lib] = true
			libs = append(libs, lib)
		}
	}

	for _, f := range files {
		add(installID(f))
		imported, err := f.ImportedLibraries()
		if err != nil {
			return nil, fmt.Errorf("failed to read imported libraries: %w", err)
		}
		for _, lib := range imported {
			add(lib)
		}
	}

	return libs, nil
}

// openMachO opens a thin or universal Mach-O file
func openMachO(path string) ([]*macho.File, io.Closer, error) {
	if fat, err := macho.OpenFat(path); err == nil {
		files := make([]*macho.File, 0, len(fat.Arches))
		for _, arch := range fat.Arches {
			files = append(files, arch.File)
		}
		return files, fat, nil
	}

	f, err := macho.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Mach-O file: %w", err)
	}
	return []*macho.File{f}, f, nil
}

// installID decodes the LC_ID_DYLIB load command of a dynamic library
func installID(f *macho.File) string {
	for _, load := range f.Loads {
		raw := load.Raw()
		if len(raw) < 24 || macho.LoadCmd(f.ByteOrder.Uint32(raw[0:4])) != loadCmdIDDylib {
			continue
		}
		offset := f.ByteOrder.Uint32(raw[8:12])
		if int(offset) >= len(raw) {
			return ""
		}
		name := raw[offset:]
		if i := strings.IndexByte(string(name), 0); i >= 0 {
			name = name[:i]
		}
		return string(name)
	}
	return ""
}

// NewDefaultInspector prefers otool, as used by the macOS toolchain, and
// falls back to the pure Go reader when otool is not installed
func NewDefaultInspector() gateways.DependencyInspector {
	otool := NewOtoolInspector()
	if otool.Available() {
		return otool
	}
	return NewMachOInspector()
}
