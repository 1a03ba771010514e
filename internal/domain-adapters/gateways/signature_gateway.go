package gateways

import (
	"fmt"

	"github.com/ochairo/depbundle/internal/external-adapters/gpg"
)

// signatureGateway wraps the external OpenPGP adapter for signing and
// verifying bundle archives
type signatureGateway struct{}

// NewSignatureGateway creates a new signature gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewSignatureGateway() *signatureGateway {
	return &signatureGateway{}
}

// SignFile creates filePath.asc using the private key at keyPath
func (g *signatureGateway) SignFile(filePath, keyPath string, passphrase []byte) (string, error) {
	signer, err := gpg.NewSignerFromFile(keyPath, passphrase)
	if err != nil {
		return "", fmt.Errorf("failed to load signing key: %w", err)
	}

	sigPath, err := signer.SignFile(filePath)
	if err != nil {
		return "", fmt.Errorf("signing failed: %w", err)
	}
	return sigPath, nil
}

// VerifyFile checks sigPath against filePath using the public keys in keyringPath
// and returns the signer's fingerprint. An empty sigPath means filePath.asc.
func (g *signatureGateway) VerifyFile(filePath, sigPath, keyringPath string) (string, error) {
	if sigPath == "" {
		sigPath = filePath + gpg.SignatureSuffix
	}

	verifier := gpg.NewVerifier()
	if err := verifier.ImportKeyFromFile(keyringPath); err != nil {
		return "", fmt.Errorf("failed to import keyring: %w", err)
	}

	fingerprint, err := verifier.VerifySignatureFromFile(filePath, sigPath)
	if err != nil {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}
	return fingerprint, nil
}
