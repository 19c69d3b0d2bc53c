// Package nospam handles the 32-bit nospam component of a Tox address.
package nospam

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Length is the number of hex characters in a displayed nospam value.
const Length = 8

const zeroFill = "00000000"

var (
	// ErrInvalidHex indicates input that is empty or contains a non-hex character.
	ErrInvalidHex = errors.New("nospam: invalid hex")
	// ErrOverflow indicates input whose value does not fit in 32 bits.
	ErrOverflow = errors.New("nospam: value exceeds 32 bits")
)

// ParseError is returned by ParseHex for rejected input.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse nospam %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Value is a nospam value.
type Value uint32

// String returns the value as 8 uppercase hex characters.
func (v Value) String() string {
	return fmt.Sprintf("%08X", uint32(v))
}

// Bytes returns the big-endian encoding used inside a Tox address.
func (v Value) Bytes() [4]byte {
	var out [4]byte
	binary.BigEndian.PutUint32(out[:], uint32(v))
	return out
}

// Normalize pads text with leading zeros to exactly 8 characters. Longer
// input keeps its first 8 characters.
func Normalize(text string) string {
	runes := []rune(text)
	switch {
	case len(runes) == Length:
		return text
	case len(runes) > Length:
		return string(runes[:Length])
	default:
		return zeroFill[:Length-len(runes)] + text
	}
}

// NormalizeEdit normalizes text after an edit and returns the cursor at its
// pre-edit offset, clamped to the normalized text.
func NormalizeEdit(text string, cursor int) (string, int) {
	normalized := Normalize(text)
	if cursor < 0 {
		cursor = 0
	}
	if n := len([]rune(normalized)); cursor > n {
		cursor = n
	}
	return normalized, cursor
}

// ParseHex parses base-16 text into a Value. Surrounding whitespace and an
// optional 0x prefix are accepted.
func ParseHex(text string) (Value, error) {
	clean := strings.TrimSpace(text)
	if len(clean) > 2 && (clean[:2] == "0x" || clean[:2] == "0X") {
		clean = clean[2:]
	}
	if clean == "" {
		return 0, &ParseError{Input: text, Err: ErrInvalidHex}
	}

	parsed, err := strconv.ParseUint(clean, 16, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &ParseError{Input: text, Err: ErrOverflow}
		}
		return 0, &ParseError{Input: text, Err: ErrInvalidHex}
	}

	return Value(parsed), nil
}

// Generate reads a uniformly distributed value from r.
func Generate(r io.Reader) (Value, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("read nospam entropy: %w", err)
	}
	return Value(binary.BigEndian.Uint32(buf[:])), nil
}

// Random returns a value drawn from crypto/rand.
func Random() Value {
	v, err := Generate(rand.Reader)
	if err != nil {
		panic("nospam: crypto/rand failed: " + err.Error())
	}
	return v
}

// MarshalText encodes the value in its display form.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a hex value written by MarshalText.
func (v *Value) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
