package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vendoreval/internal/auth"
)

var secret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	p := auth.Principal{
		UserID:      7,
		Email:       "dm@example.com",
		Role:        auth.RoleDecisionMaker,
		EvaluatorID: 3,
		Name:        "Dana",
	}

	token, err := auth.GenerateToken(p, secret)
	require.NoError(t, err)

	got, err := auth.VerifyToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, p, *got)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken(auth.Principal{UserID: 1, Email: "a@b.c", Role: auth.RoleContributor}, secret)
	require.NoError(t, err)

	_, err = auth.VerifyToken(token, []byte("other-secret"))
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := auth.VerifyToken("not-a-token", secret)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	require.True(t, auth.CheckPassword(hash, "hunter22"))
	require.False(t, auth.CheckPassword(hash, "hunter23"))
}
