package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"toxprivacy/crypto"
	"toxprivacy/nospam"
)

// AddressLength is the number of hex characters in a full address.
const AddressLength = 2 * (crypto.KeySize + 4 + 2)

// ErrBadChecksum indicates an address whose checksum does not match its contents.
var ErrBadChecksum = errors.New("core: address checksum mismatch")

// Identity is the public address others use to send contact requests:
// public key, nospam and a two-byte checksum.
type Identity struct {
	PublicKey [crypto.KeySize]byte
	Nospam    nospam.Value
}

// Checksum XORs the address payload two bytes at a time.
func (id Identity) Checksum() [2]byte {
	var sum [2]byte
	for i, b := range id.PublicKey {
		sum[i%2] ^= b
	}
	for i, b := range id.Nospam.Bytes() {
		sum[(crypto.KeySize+i)%2] ^= b
	}
	return sum
}

// NoSpamString returns the nospam part as 8 uppercase hex characters.
func (id Identity) NoSpamString() string {
	return id.Nospam.String()
}

// String returns the full address as uppercase hex.
func (id Identity) String() string {
	ns := id.Nospam.Bytes()
	sum := id.Checksum()

	raw := make([]byte, 0, AddressLength/2)
	raw = append(raw, id.PublicKey[:]...)
	raw = append(raw, ns[:]...)
	raw = append(raw, sum[:]...)
	return strings.ToUpper(hex.EncodeToString(raw))
}

// ParseIdentity decodes and verifies a full hex address.
func ParseIdentity(text string) (Identity, error) {
	clean := strings.TrimSpace(text)
	if len(clean) != AddressLength {
		return Identity{}, fmt.Errorf("parse address: want %d hex chars, got %d", AddressLength, len(clean))
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Identity{}, fmt.Errorf("parse address: %w", err)
	}

	var id Identity
	copy(id.PublicKey[:], raw[:crypto.KeySize])
	ns, err := nospam.ParseHex(clean[2*crypto.KeySize : 2*crypto.KeySize+nospam.Length])
	if err != nil {
		return Identity{}, fmt.Errorf("parse address: %w", err)
	}
	id.Nospam = ns

	want := id.Checksum()
	if raw[len(raw)-2] != want[0] || raw[len(raw)-1] != want[1] {
		return Identity{}, ErrBadChecksum
	}

	return id, nil
}
