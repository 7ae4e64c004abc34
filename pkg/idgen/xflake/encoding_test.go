package xflake

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncoding(t *testing.T) {
	cases := map[string]Encoding{
		"":        EncodingDecimal,
		"dec":     EncodingDecimal,
		"Decimal": EncodingDecimal,
		" base58": EncodingBase58,
		"BASE64":  EncodingBase64,
	}
	for in, want := range cases {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEncoding("hex")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestEncode_KnownValues(t *testing.T) {
	const id = 2628608
	tests := []struct {
		enc  Encoding
		want string
	}{
		{EncodingDecimal, "2628608"},
		{EncodingBase2, "1010000001110000000000"},
		{EncodingBase36, "1kc8w"},
	}
	for _, tt := range tests {
		t.Run(string(tt.enc), func(t *testing.T) {
			got, err := Encode(id, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeParse_AllEncodings(t *testing.T) {
	ids := []int64{0, 1, 31, 32, 2628608, 1 << 52, math.MaxInt64}
	for _, enc := range Encodings() {
		for _, id := range ids {
			s, err := Encode(id, enc)
			require.NoError(t, err)
			got, err := Parse(s, enc)
			require.NoError(t, err, "%s %q", enc, s)
			assert.Equal(t, id, got, "%s %q", enc, s)
		}
	}
}

func TestEncodeParse_Errors(t *testing.T) {
	_, err := Encode(-1, EncodingDecimal)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = Encode(1, Encoding("hex"))
	assert.ErrorIs(t, err, ErrUnknownEncoding)

	_, err = Parse("1", Encoding("hex"))
	assert.ErrorIs(t, err, ErrUnknownEncoding)

	for enc, s := range map[Encoding]string{
		EncodingDecimal: "12x",
		EncodingBase2:   "102",
		EncodingBase32:  "0",
		EncodingBase36:  "!",
		EncodingBase58:  "0OIl",
		EncodingBase64:  "***",
	} {
		_, err := Parse(s, enc)
		assert.ErrorIs(t, err, ErrInvalidID, "%s %q", enc, s)
	}

	_, err = Parse("-5", EncodingDecimal)
	assert.ErrorIs(t, err, ErrInvalidID)
}
