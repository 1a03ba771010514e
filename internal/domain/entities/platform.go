package entities

import (
	"fmt"
	"strings"
)

// Platform identifies a target operating system and architecture
type Platform struct {
	OS   string // "darwin", "linux", "windows"
	Arch string // "x86_64", "arm64", ...
}

// String returns the platform in "os-arch" form (e.g. darwin-arm64)
func (p Platform) String() string {
	if p.Arch == "" {
		return p.OS
	}
	return p.OS + "-" + p.Arch
}

// IsDarwin reports whether the platform is macOS
func (p Platform) IsDarwin() bool {
	return p.OS == "darwin"
}

// ParsePlatform parses "os-arch" or a bare OS name
func ParsePlatform(s string) (Platform, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Platform{}, fmt.Errorf("empty platform")
	}

	osName, arch, _ := strings.Cut(s, "-")
	normalized := NormalizeOS(osName)
	if normalized == "" {
		return Platform{}, fmt.Errorf("unknown operating system in platform %q", s)
	}

	return Platform{OS: normalized, Arch: NormalizeArch(arch)}, nil
}

// NormalizeOS maps package-manager style OS names onto Go style names.
// Unknown names yield an empty string.
func NormalizeOS(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "darwin", "macos", "osx", "macosx":
		return "darwin"
	case "linux":
		return "linux"
	case "windows", "win", "win32", "win64":
		return "windows"
	default:
		return ""
	}
}

// NormalizeArch maps Go architecture names onto the common platform names
func NormalizeArch(arch string) string {
	switch strings.ToLower(strings.TrimSpace(arch)) {
	case "amd64", "x86_64", "x64":
		return "x86_64"
	case "arm64", "aarch64", "armv8":
		return "arm64"
	case "386", "i386", "x86":
		return "i386"
	default:
		return strings.ToLower(strings.TrimSpace(arch))
	}
}
