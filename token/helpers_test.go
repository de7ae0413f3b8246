package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// signWithSubject builds a token signed with the test secret but carrying an
// arbitrary subject, for exercising subject validation.
func signWithSubject(t *testing.T, subject string) string {
	t.Helper()

	key, err := base64.StdEncoding.DecodeString(testSecret)
	require.NoError(t, err)

	now := time.Now()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(key)
	require.NoError(t, err)
	return raw
}
