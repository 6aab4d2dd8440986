package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(TokenSize)
	require.NoError(t, err)
	require.Len(t, tok, 43)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	require.Len(t, raw, TokenSize)

	other, err := GenerateToken(TokenSize)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := GenerateToken(size)
		require.Error(t, err)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("abc")
	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("abc"))
	require.NotEqual(t, fp, FingerprintToken("abd"))
	require.NotEqual(t, "abc", fp)
}
