package gpg

import (
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// SignatureSuffix is appended to a file name to form its detached signature
const SignatureSuffix = ".asc"

// Signer creates armored detached signatures with a private key
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads the first private key in keyPath, decrypting it
// with passphrase when it is protected
func NewSignerFromFile(keyPath string, passphrase []byte) (*Signer, error) {
	entities, err := readKeyRingFile(keyPath)
	if err != nil {
		return nil, err
	}

	var entity *openpgp.Entity
	for _, e := range entities {
		if e.PrivateKey != nil {
			entity = e
			break
		}
	}
	if entity == nil {
		return nil, fmt.Errorf("no private key found in %s", keyPath)
	}

	if entity.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("private key is encrypted and no passphrase was given")
		}
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
		for _, sub := range entity.Subkeys {
			if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
				if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
					return nil, fmt.Errorf("failed to decrypt subkey: %w", err)
				}
			}
		}
	}

	return &Signer{entity: entity}, nil
}

// Fingerprint returns the signing key's fingerprint in upper-case hex
func (s *Signer) Fingerprint() string {
	return fmt.Sprintf("%X", s.entity.PrimaryKey.Fingerprint)
}

// SignFile writes an armored detached signature of filePath to filePath + ".asc"
// and returns the signature path
func (s *Signer) SignFile(filePath string) (string, error) {
	//nolint:gosec // G304: filePath is the archive being signed
	data, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer data.Close()

	sigPath := filePath + SignatureSuffix
	//nolint:gosec // G304: signature path derives from the signed file
	out, err := os.OpenFile(sigPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(out, s.entity, data, nil); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to sign %s: %w", filePath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write signature file: %w", err)
	}

	return sigPath, nil
}
