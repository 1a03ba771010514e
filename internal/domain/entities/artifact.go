// Package entities defines core domain models and data structures.
package entities

// Artifact represents a file produced by a bundle build
type Artifact struct {
	Name     string // base filename
	Path     string
	Platform string
	Type     string // "archive", "checksum", "signature"
}
