package solana

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestParsePublicKey(t *testing.T) {
	pk, err := ParsePublicKey(usdcMint)
	require.NoError(t, err)
	assert.Equal(t, usdcMint, pk.String())
	assert.False(t, pk.IsZero())

	padded, err := ParsePublicKey("  " + usdcMint + "\n")
	require.NoError(t, err)
	assert.Equal(t, pk, padded)
}

func TestParsePublicKey_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "empty", input: "", want: ErrEmptyKey},
		{name: "whitespace", input: "   ", want: ErrEmptyKey},
		{name: "too short", input: "abc", want: ErrInvalidKeyLength},
		{name: "too long", input: usdcMint + usdcMint, want: ErrInvalidKeyLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePublicKey(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	for _, bad := range []string{"not-a-key", "0OIl", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt10"} {
		_, err := ParsePublicKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestSystemProgramID(t *testing.T) {
	assert.Equal(t, "11111111111111111111111111111111", SystemProgramID.String())
	assert.True(t, SystemProgramID.IsZero())

	parsed, err := ParsePublicKey("11111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, SystemProgramID, parsed)
}

func TestPublicKey_JSON(t *testing.T) {
	var v struct {
		Owner PublicKey `json:"owner"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"owner":"`+usdcMint+`"}`), &v))
	assert.Equal(t, usdcMint, v.Owner.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"`+usdcMint+`"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"owner":"short"}`), &v))
}

func TestMustParsePublicKeyPanics(t *testing.T) {
	assert.Panics(t, func() { MustParsePublicKey("short") })
	assert.NotPanics(t, func() { MustParsePublicKey(usdcMint) })
}
