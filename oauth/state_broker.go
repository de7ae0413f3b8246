// Package oauth drives the third-party account-linking flow: CSRF state
// issuance and one-time redemption, the authorization-code exchange, and the
// downstream account-link call.
package oauth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pateldm/go-auth-service/kvstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	stateKeyPrefix = "github_oauth:"
	stateTTL       = 10 * time.Minute
)

// Config carries the provider registration. AuthURL/TokenURL/APIBaseURL
// default to GitHub and are overridable for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
}

// StateBroker issues single-use, time-boxed state tokens bound to a local
// user id and redeems each exactly once.
type StateBroker struct {
	store kvstore.Store
	conf  *oauth2.Config
}

func NewStateBroker(store kvstore.Store, cfg Config) (*StateBroker, error) {
	if store == nil {
		return nil, errors.New("[NewStateBroker] store is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("[NewStateBroker] client id is required")
	}

	endpoint := github.Endpoint
	if cfg.AuthURL != "" && cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{AuthURL: cfg.AuthURL, TokenURL: cfg.TokenURL}
	}

	return &StateBroker{
		store: store,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     endpoint,
			Scopes:       normalizeScope(cfg.Scope),
		},
	}, nil
}

// BeginLink stores a fresh state entry for the user and returns the provider
// authorization URL embedding it.
func (b *StateBroker) BeginLink(ctx context.Context, userID uuid.UUID) (string, error) {
	state := uuid.NewString()

	if err := b.store.Set(ctx, stateKey(state), userID.String(), stateTTL); err != nil {
		return "", errors.Wrap(err, "[StateBroker.BeginLink] save state")
	}

	log.Debug().Str("userId", userID.String()).Msg("oauth link initiated")
	return b.conf.AuthCodeURL(state), nil
}

// RedeemState consumes a state entry and returns the user it was issued to.
// The read and delete are a single store operation, so concurrent redemption
// attempts for the same state yield exactly one success. An absent entry
// covers both "never issued" and "already redeemed"; a stored value that is
// not a user id is treated as tampering.
func (b *StateBroker) RedeemState(ctx context.Context, state string) (uuid.UUID, error) {
	var raw string
	found, err := b.store.GetDel(ctx, stateKey(state), &raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "[StateBroker.RedeemState] consume state")
	}
	if !found {
		return uuid.Nil, ErrStateMismatch
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		log.Error().Str("state", state).Msg("oauth state entry holds an invalid user id")
		return uuid.Nil, ErrStateMismatch
	}

	return userID, nil
}

func stateKey(state string) string {
	return stateKeyPrefix + state
}

// normalizeScope splits a configured scope string into individual scopes.
// The provider expects space-separated scopes, so commas and runs of
// whitespace both act as separators.
func normalizeScope(scope string) []string {
	return strings.Fields(strings.ReplaceAll(scope, ",", " "))
}
