package nospam

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "00000000"},
		{name: "short", in: "ABC", want: "00000ABC"},
		{name: "seven", in: "1234567", want: "01234567"},
		{name: "exact", in: "1A2B3C4D", want: "1A2B3C4D"},
		{name: "long", in: "1A2B3C4D5E", want: "1A2B3C4D"},
		{name: "exact non-hex kept", in: "zzzzzzzz", want: "zzzzzzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeShortHexEndsWithInput(t *testing.T) {
	const digits = "0123456789abcdefABCDEF"
	for n := 0; n <= Length; n++ {
		for start := 0; start+n <= len(digits); start += 3 {
			in := digits[start : start+n]
			out := Normalize(in)
			assert.Len(t, out, Length, "input %q", in)
			assert.True(t, strings.HasSuffix(out, in), "input %q produced %q", in, out)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"", "1", "ff", "deadbeef", "deadbeef00", "héllo", "  12  ", "zzzzzzzzzzzz"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeEditKeepsCursor(t *testing.T) {
	text, cursor := NormalizeEdit("1234567", 3)
	assert.Equal(t, "01234567", text)
	assert.Equal(t, 3, cursor)

	text, cursor = NormalizeEdit("1", 12)
	assert.Equal(t, "00000001", text)
	assert.Equal(t, Length, cursor)

	_, cursor = NormalizeEdit("ABCDEF01", -4)
	assert.Equal(t, 0, cursor)
}

func TestParseHex(t *testing.T) {
	v, err := ParseHex("1A2B3C4D")
	require.NoError(t, err)
	assert.Equal(t, Value(0x1A2B3C4D), v)

	v, err = ParseHex(" 0xdeadbeef\n")
	require.NoError(t, err)
	assert.Equal(t, Value(0xDEADBEEF), v)

	v, err = ParseHex("00000000")
	require.NoError(t, err)
	assert.Equal(t, Value(0), v)

	v, err = ParseHex("FFFFFFFF")
	require.NoError(t, err)
	assert.Equal(t, Value(0xFFFFFFFF), v)
}

func TestParseHexRejectsInvalidInput(t *testing.T) {
	for _, in := range []string{"zzzzzzzz", "", "   ", "12 34", "-1", "+1", "0x", "1_000"} {
		_, err := ParseHex(in)
		require.Error(t, err, "input %q", in)
		assert.ErrorIs(t, err, ErrInvalidHex, "input %q", in)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, in, parseErr.Input)
	}
}

func TestParseHexRejectsOverflow(t *testing.T) {
	_, err := ParseHex("100000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "00000000", Value(0).String())
	assert.Equal(t, "0000ABCD", Value(0xabcd).String())
	assert.Equal(t, "DEADBEEF", Value(0xdeadbeef).String())
	assert.Equal(t, [4]byte{0xDE, 0xAD, 0xBE, 0xEF}, Value(0xdeadbeef).Bytes())
}

func TestGenerate(t *testing.T) {
	v, err := Generate(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))
	require.NoError(t, err)
	assert.Equal(t, Value(0x01020304), v)

	_, err = Generate(bytes.NewReader([]byte{0x01}))
	require.Error(t, err)
}

func TestRandomHasNoBitBias(t *testing.T) {
	const samples = 20_000
	var counts [32]int
	for i := 0; i < samples; i++ {
		v := uint32(Random())
		for bit := 0; bit < 32; bit++ {
			if v&(1<<bit) != 0 {
				counts[bit]++
			}
		}
	}

	// six standard deviations around samples/2 (sigma ~ 70.7)
	const low, high = samples/2 - 425, samples/2 + 425
	for bit, c := range counts {
		assert.True(t, c > low && c < high, "bit %d set %d times out of %d", bit, c, samples)
	}
}

func TestValueTextRoundTrip(t *testing.T) {
	raw, err := Value(0x0000BEEF).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0000BEEF", string(raw))

	var v Value
	require.NoError(t, v.UnmarshalText(raw))
	assert.Equal(t, Value(0xBEEF), v)

	require.ErrorIs(t, v.UnmarshalText([]byte("nothex!!")), ErrInvalidHex)
	assert.Equal(t, Value(0xBEEF), v, "failed decode must keep the prior value")
}
