package token

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const minSecretBytes = 32

// Token is a freshly issued access/refresh token pair. It is never persisted
// as a unit; only the refresh component is written to the ledger.
type Token struct {
	GrantType    string
	AccessToken  string
	RefreshToken string
}

// Config holds the signing material and lifetimes for issued tokens.
type Config struct {
	Secret     string // base64-encoded HMAC key
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies the compact token strings used by the service.
// The signing key is derived once at construction and never rotated.
type Codec struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowFunc    func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the time source used for both issuing and verification
// (primarily for testing).
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(cfg Config, options ...CodecOption) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.Secret)
	if err != nil {
		return nil, errors.Wrap(err, "[NewCodec] secret is not valid base64")
	}
	if len(key) < minSecretBytes {
		return nil, errors.Errorf("[NewCodec] secret must be at least %d bytes", minSecretBytes)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("[NewCodec] token lifetimes must be positive")
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, errors.New("[NewCodec] access lifetime must be shorter than refresh lifetime")
	}

	codec := &Codec{
		key:        key,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		nowFunc:    time.Now,
	}

	for _, opt := range options {
		opt(codec)
	}

	return codec, nil
}

// accessClaims is the signed payload of an access token. The refresh token
// carries registered claims only, without the role.
type accessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates a new access/refresh pair for the user. Both tokens embed
// the issue timestamp, so two calls at different instants produce different
// token strings for the same inputs.
func (c *Codec) Issue(userID uuid.UUID, role string) (Token, error) {
	now := c.nowFunc()

	accessToken, err := c.sign(accessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	})
	if err != nil {
		return Token{}, errors.Wrap(err, "[Codec.Issue] sign access token")
	}

	refreshToken, err := c.sign(accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	})
	if err != nil {
		return Token{}, errors.Wrap(err, "[Codec.Issue] sign refresh token")
	}

	return Token{
		GrantType:    "Bearer",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// VerifySubject parses and verifies a token, returning the user id it was
// issued for. A token whose expiry equals the current instant is expired.
func (c *Codec) VerifySubject(raw string) (uuid.UUID, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(raw, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil {
		return uuid.Nil, classifyParseError(err)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, ErrInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalid
	}

	return userID, nil
}

// ExtractBearerSubject verifies the access token carried in an Authorization
// header and returns its subject.
func (c *Codec) ExtractBearerSubject(authorizationHeader string) (uuid.UUID, error) {
	if !strings.HasPrefix(authorizationHeader, "Bearer ") {
		return uuid.Nil, ErrUnauthorized
	}
	return c.VerifySubject(strings.TrimPrefix(authorizationHeader, "Bearer "))
}

func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

func (c *Codec) sign(claims accessClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// classifyParseError maps jwt parse failures onto the codec's error set.
// Expiry is checked first: jwt joins the expiry error with a generic invalid
// claims error and callers care about the specific cause.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrUnsupported
	default:
		return ErrInvalid
	}
}
