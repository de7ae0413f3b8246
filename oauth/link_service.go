package oauth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pateldm/go-auth-service/accountlink"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const defaultAPIBaseURL = "https://api.github.com"

// AccountLinker persists the association between a local user and the
// provider identity.
type AccountLinker interface {
	Link(ctx context.Context, request accountlink.LinkRequest) error
}

// LinkResult is returned to the caller after a fully successful callback.
type LinkResult struct {
	Success           bool
	ProviderUsername  string
	ProviderAccountID int64
}

// providerProfile mirrors the provider's user endpoint response.
type providerProfile struct {
	ID          int64   `json:"id"`
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
	PublicRepos int     `json:"public_repos"`
}

// LinkService handles the provider callback: it redeems the state, exchanges
// the authorization code, fetches the provider profile and calls the
// account-link service. No step is retried; the authorization code and the
// state are both single-use, so a retry after a partial failure could never
// succeed deterministically.
type LinkService struct {
	broker     *StateBroker
	links      AccountLinker
	apiBaseURL string
	httpClient *http.Client
}

type LinkServiceOption func(*LinkService)

// WithHTTPClient overrides the HTTP client used for the provider calls,
// e.g. to apply the deployment's upstream timeout.
func WithHTTPClient(httpClient *http.Client) LinkServiceOption {
	return func(s *LinkService) {
		s.httpClient = httpClient
	}
}

func NewLinkService(broker *StateBroker, links AccountLinker, cfg Config, options ...LinkServiceOption) (*LinkService, error) {
	if broker == nil {
		return nil, errors.New("[NewLinkService] state broker is required")
	}
	if links == nil {
		return nil, errors.New("[NewLinkService] account linker is required")
	}

	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	service := &LinkService{
		broker:     broker,
		links:      links,
		apiBaseURL: apiBaseURL,
		httpClient: http.DefaultClient,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// HandleCallback processes a provider redirect. The state is consumed before
// anything else, so an unknown or replayed state never reaches the provider
// or the account-link service.
func (s *LinkService) HandleCallback(ctx context.Context, code, state string) (LinkResult, error) {
	userID, err := s.broker.RedeemState(ctx, state)
	if err != nil {
		return LinkResult{}, err
	}

	providerToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return LinkResult{}, err
	}

	profile, err := s.fetchProfile(ctx, providerToken)
	if err != nil {
		return LinkResult{}, err
	}

	err = s.links.Link(ctx, accountlink.LinkRequest{
		UserID:            userID,
		GithubID:          profile.ID,
		GithubUsername:    profile.Login,
		GithubAccessToken: providerToken,
		AvatarURL:         profile.AvatarURL,
	})
	if err != nil {
		// Account-link errors carry the user-visible outcome; propagate
		// them untranslated.
		return LinkResult{}, err
	}

	log.Info().
		Str("userId", userID.String()).
		Str("providerLogin", profile.Login).
		Msg("provider account linked")

	return LinkResult{
		Success:           true,
		ProviderUsername:  profile.Login,
		ProviderAccountID: profile.ID,
	}, nil
}

// exchangeCode swaps the authorization code for a provider access token.
// A 4xx from the provider means the code was bad or consumed; a 5xx or a
// transport failure is a provider-side error.
func (s *LinkService) exchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	providerToken, err := s.broker.conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode >= 400 && retrieveErr.Response.StatusCode < 500 {
			log.Error().Int("status", retrieveErr.Response.StatusCode).Msg("provider token exchange rejected")
			return "", ErrTokenExchangeFailed
		}
		log.Error().Err(err).Msg("provider token exchange failed")
		return "", ErrProviderAPI
	}

	return providerToken.AccessToken, nil
}

func (s *LinkService) fetchProfile(ctx context.Context, accessToken string) (providerProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBaseURL+"/user", nil)
	if err != nil {
		return providerProfile{}, errors.Wrap(err, "[LinkService.fetchProfile] build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("provider profile fetch failed")
		return providerProfile{}, ErrProviderAPI
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Error().Int("status", resp.StatusCode).Msg("provider profile fetch rejected")
		return providerProfile{}, ErrProviderAPI
	}

	var profile providerProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return providerProfile{}, errors.Wrap(err, "[LinkService.fetchProfile] decode response")
	}

	return profile, nil
}
