package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pateldm/go-auth-service/token"
	"github.com/stretchr/testify/require"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func newTestCodec(t *testing.T, now func() time.Time) *token.Codec {
	t.Helper()

	opts := []token.CodecOption{}
	if now != nil {
		opts = append(opts, token.WithNowFunc(now))
	}
	codec, err := token.NewCodec(token.Config{
		Secret:     testSecret,
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, opts...)
	require.NoError(t, err)
	return codec
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t, nil)
	userID := uuid.New()

	issued, err := codec.Issue(userID, "ROLE_USER")
	require.NoError(t, err)
	require.Equal(t, "Bearer", issued.GrantType)
	require.NotEmpty(t, issued.AccessToken)
	require.NotEmpty(t, issued.RefreshToken)

	subject, err := codec.VerifySubject(issued.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, subject)

	subject, err = codec.VerifySubject(issued.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, userID, subject)
}

func TestCodecIssueAtDifferentInstantsProducesDifferentTokens(t *testing.T) {
	now := time.Now()
	current := now
	codec := newTestCodec(t, func() time.Time { return current })
	userID := uuid.New()

	first, err := codec.Issue(userID, "ROLE_USER")
	require.NoError(t, err)

	current = now.Add(time.Second)
	second, err := codec.Issue(userID, "ROLE_USER")
	require.NoError(t, err)

	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestCodecExpiryBoundary(t *testing.T) {
	now := time.Now()
	current := now
	codec := newTestCodec(t, func() time.Time { return current })

	issued, err := codec.Issue(uuid.New(), "ROLE_USER")
	require.NoError(t, err)

	// A token whose expiry equals the current instant is already expired.
	current = now.Add(30 * time.Minute)
	_, err = codec.VerifySubject(issued.AccessToken)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestCodecSignatureMismatch(t *testing.T) {
	codec := newTestCodec(t, nil)

	otherSecret := base64.StdEncoding.EncodeToString([]byte("ffffffffffffffffffffffffffffffff"))
	other, err := token.NewCodec(token.Config{
		Secret:     otherSecret,
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	issued, err := other.Issue(uuid.New(), "ROLE_USER")
	require.NoError(t, err)

	_, err = codec.VerifySubject(issued.AccessToken)
	require.ErrorIs(t, err, token.ErrSignatureInvalid)
}

func TestCodecMalformedToken(t *testing.T) {
	codec := newTestCodec(t, nil)

	_, err := codec.VerifySubject("not-a-jwt")
	require.ErrorIs(t, err, token.ErrMalformed)
}

func TestCodecNonUUIDSubject(t *testing.T) {
	codec := newTestCodec(t, nil)

	raw := signWithSubject(t, "not-a-uuid")
	_, err := codec.VerifySubject(raw)
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestCodecExtractBearerSubject(t *testing.T) {
	codec := newTestCodec(t, nil)
	userID := uuid.New()

	issued, err := codec.Issue(userID, "ROLE_USER")
	require.NoError(t, err)

	subject, err := codec.ExtractBearerSubject("Bearer " + issued.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, subject)

	_, err = codec.ExtractBearerSubject("")
	require.ErrorIs(t, err, token.ErrUnauthorized)

	_, err = codec.ExtractBearerSubject("Basic abcdef")
	require.ErrorIs(t, err, token.ErrUnauthorized)
}
