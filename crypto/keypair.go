package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

const (
	secretKeyPEMType = "TOX SECRET KEY"
	// KeySize is the byte length of both halves of an identity keypair.
	KeySize = 32
)

// KeyPair is the long-term NaCl box identity key of a profile.
type KeyPair struct {
	Public [KeySize]byte
	Secret [KeySize]byte
}

// EnsureKeyPair loads the identity keypair from disk, generating it on first run.
func EnsureKeyPair(path string) (*KeyPair, error) {
	kp, err := LoadKeyPair(path)
	if err == nil {
		return kp, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	kp, err = GenerateKeyPair(rand.Reader)
	if err != nil {
		return nil, err
	}
	if err := SaveKeyPair(path, kp); err != nil {
		return nil, err
	}

	return kp, nil
}

// GenerateKeyPair creates a new identity keypair from the given entropy source.
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	public, secret, err := box.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("generate identity keypair: %w", err)
	}
	return &KeyPair{Public: *public, Secret: *secret}, nil
}

// LoadKeyPair reads the secret key PEM and derives the public key from it.
func LoadKeyPair(path string) (*KeyPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity key: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("decode identity key PEM: no PEM block")
	}
	if block.Type != secretKeyPEMType {
		return nil, fmt.Errorf("decode identity key PEM: unexpected type %q", block.Type)
	}
	if len(block.Bytes) != KeySize {
		return nil, fmt.Errorf("decode identity key PEM: invalid key size %d", len(block.Bytes))
	}

	public, err := curve25519.X25519(block.Bytes, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive identity public key: %w", err)
	}

	kp := &KeyPair{}
	copy(kp.Secret[:], block.Bytes)
	copy(kp.Public[:], public)
	return kp, nil
}

// SaveKeyPair writes the secret key PEM file with 0600 permissions.
func SaveKeyPair(path string, kp *KeyPair) error {
	if kp == nil {
		return errors.New("save identity key: nil keypair")
	}

	block := &pem.Block{
		Type:  secretKeyPEMType,
		Bytes: kp.Secret[:],
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("write identity key: %w", err)
	}

	return nil
}

// KeyFingerprint returns the truncated SHA-256 hex fingerprint of a public key.
func KeyFingerprint(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:16])
}

// FormatFingerprint returns fingerprint text grouped in chunks of 4 uppercase chars.
func FormatFingerprint(fingerprint string) string {
	clean := strings.ToUpper(strings.ReplaceAll(fingerprint, " ", ""))
	if clean == "" {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(clean); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(clean[i:min(i+4, len(clean))])
	}

	return b.String()
}
