package entities

import "time"

// Manifest describes the contents of a produced bundle
type Manifest struct {
	BundleID     string         `json:"bundle_id"`
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Platform     string         `json:"platform"`
	Requirements []string       `json:"requirements"`
	Files        []ManifestFile `json:"files"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ManifestFile is one file inside the bundle
type ManifestFile struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}
