package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"), "gatehouse")
	now := time.Now().UTC()

	claims := NewClaims("jti-1", "principal-1", "access", time.Hour, codec.Issuer(), now)
	claims.Email = "user@example.com"
	claims.RoleID = "role-1"
	claims.RoleName = "admin"

	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	got, err := codec.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "principal-1", got.Subject)
	require.Equal(t, "jti-1", got.ID)
	require.Equal(t, "access", got.Kind)
	require.Equal(t, "user@example.com", got.Email)
	require.Equal(t, "admin", got.RoleName)
	require.WithinDuration(t, now.Add(time.Hour), got.ExpiresAtTime(), 2*time.Second)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"), "gatehouse")
	claims := NewClaims("jti-2", "p", "access", -time.Minute, codec.Issuer(), time.Now().UTC().Add(-time.Hour))

	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewCodec([]byte("secret-a"), "gatehouse")
	raw, err := signer.Sign(NewClaims("jti-3", "p", "access", time.Hour, "gatehouse", time.Now().UTC()))
	require.NoError(t, err)

	verifier := NewCodec([]byte("secret-b"), "gatehouse")
	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"), "gatehouse")

	_, err := codec.Verify("definitely.not.a-jwt")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = codec.Verify("")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyIssuerMismatch(t *testing.T) {
	t.Parallel()

	signer := NewCodec([]byte("test-secret"), "someone-else")
	raw, err := signer.Sign(NewClaims("jti-4", "p", "access", time.Hour, signer.Issuer(), time.Now().UTC()))
	require.NoError(t, err)

	verifier := NewCodec([]byte("test-secret"), "gatehouse")
	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrIssuer)
}
