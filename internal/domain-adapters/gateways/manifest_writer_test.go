package gateways

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/depbundle/internal/domain/entities"
)

func TestManifestWriter_WriteManifest(t *testing.T) {
	bundle := t.TempDir()
	writeTree(t, bundle, map[string]string{
		"bin/ffmpeg":                  "hello world",
		"Frameworks/libvideoai.dylib": "",
	})
	require.NoError(t, os.Symlink("libvideoai.dylib", filepath.Join(bundle, "Frameworks", "libvideoai.1.dylib")))

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	w := NewManifestWriter()
	w.now = func() time.Time { return created }
	w.newID = func() string { return "00000000-0000-0000-0000-000000000001" }

	manifest, path, err := w.WriteManifest(bundle, "topaz-ffmpeg", "0.8.20", "darwin-arm64",
		[]string{"videoai/0.8.20", "libvpx/1.11.0"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(bundle, ManifestFileName), path)

	want := &entities.Manifest{
		BundleID:     "00000000-0000-0000-0000-000000000001",
		Name:         "topaz-ffmpeg",
		Version:      "0.8.20",
		Platform:     "darwin-arm64",
		Requirements: []string{"videoai/0.8.20", "libvpx/1.11.0"},
		Files: []entities.ManifestFile{
			{Path: "Frameworks/libvideoai.dylib", Size: 0, SHA256: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
			{Path: "bin/ffmpeg", Size: 11, SHA256: helloSum},
		},
		CreatedAt: created,
	}
	if diff := cmp.Diff(want, manifest); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	//nolint:gosec // G304: test path
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded entities.Manifest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "topaz-ffmpeg", decoded.Name)
	assert.Len(t, decoded.Files, 2)

	// A second run must not list the previous manifest
	again, _, err := w.WriteManifest(bundle, "topaz-ffmpeg", "0.8.20", "darwin-arm64", nil)
	require.NoError(t, err)
	assert.Len(t, again.Files, 2)
	assert.Empty(t, again.Requirements)
}

func TestManifestWriter_DefaultIDIsUUID(t *testing.T) {
	manifest, err := NewManifestWriter().BuildManifest(t.TempDir(), "x", "1", "linux", nil)
	require.NoError(t, err)

	_, err = uuid.Parse(manifest.BundleID)
	assert.NoError(t, err)
	assert.Empty(t, manifest.Files)
}
