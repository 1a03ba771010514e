package gateways

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKeyFiles(t *testing.T, dir string) (privPath, pubPath string) {
	t.Helper()

	entity, err := openpgp.NewEntity("Bundle Signer", "", "bundles@example.com",
		&packet.Config{Algorithm: packet.PubKeyAlgoEdDSA})
	require.NoError(t, err)

	privPath = filepath.Join(dir, "signing.asc")
	pubPath = filepath.Join(dir, "keyring.asc")

	for _, k := range []struct {
		path      string
		blockType string
		write     func(w io.Writer) error
	}{
		{privPath, openpgp.PrivateKeyType, func(w io.Writer) error { return entity.SerializePrivate(w, nil) }},
		{pubPath, openpgp.PublicKeyType, func(w io.Writer) error { return entity.Serialize(w) }},
	} {
		//nolint:gosec // G304: test path
		f, err := os.Create(k.path)
		require.NoError(t, err)
		w, err := armor.Encode(f, k.blockType, nil)
		require.NoError(t, err)
		require.NoError(t, k.write(w))
		require.NoError(t, w.Close())
		require.NoError(t, f.Close())
	}
	return privPath, pubPath
}

func TestSignatureGateway_SignAndVerify(t *testing.T) {
	dir := t.TempDir()
	privPath, pubPath := generateKeyFiles(t, dir)

	archive := filepath.Join(dir, "ffmpeg-0.8.20-windows-x86_64.tar.zst")
	require.NoError(t, os.WriteFile(archive, []byte("zstd bytes"), 0600))

	g := NewSignatureGateway()
	sigPath, err := g.SignFile(archive, privPath, nil)
	require.NoError(t, err)
	assert.Equal(t, archive+".asc", sigPath)

	fingerprint, err := g.VerifyFile(archive, "", pubPath)
	require.NoError(t, err)
	assert.Len(t, fingerprint, 40)

	_, err = g.VerifyFile(archive, sigPath, filepath.Join(dir, "missing.asc"))
	assert.Error(t, err)
}

func TestSignatureGateway_MissingKey(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "a.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("x"), 0600))

	_, err := NewSignatureGateway().SignFile(archive, filepath.Join(dir, "none.asc"), nil)
	assert.Error(t, err)
}
