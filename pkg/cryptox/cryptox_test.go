package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Tests must not touch the default ./pepper path.
	dir, err := os.MkdirTemp("", "cryptox")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.ErrorIs(t, VerifyPassword("wrong password", hash), ErrPasswordMismatch)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	require.Error(t, VerifyPassword("pw", "not-a-phc-string"))
	require.Error(t, VerifyPassword("pw", "$bcrypt$v=19$m=1,t=1,p=1$aaaa$bbbb"))
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	a, err := HashPassword("same input")
	require.NoError(t, err)
	b, err := HashPassword("same input")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintDeterministic(t *testing.T) {
	t.Parallel()

	require.Equal(t, Fingerprint("abc"), Fingerprint("abc"))
	require.NotEqual(t, Fingerprint("abc"), Fingerprint("abd"))
	require.Len(t, Fingerprint("abc"), 43)
}

func TestOneTimeCode(t *testing.T) {
	t.Parallel()

	code, err := OneTimeCode()
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, c := range code {
		require.True(t, c >= '0' && c <= '9', "code %q is not numeric", code)
	}
}
