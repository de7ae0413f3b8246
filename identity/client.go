// Package identity is the HTTP client for the user-identity service, which
// owns credential validation, password storage and user records.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RegisterRequest is forwarded to the identity service unmodified; field
// validation is the identity service's concern.
type RegisterRequest struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Name            string  `json:"name"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
	Description     *string `json:"description,omitempty"`
	GithubLink      *string `json:"githubLink,omitempty"`
}

// Profile is the identity service's view of a created user.
type Profile struct {
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	Description     *string   `json:"description,omitempty"`
	GithubLink      *string   `json:"githubLink,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type credentialValidationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userIDResponse struct {
	UserID uuid.UUID `json:"userId"`
}

// Client talks to the identity service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, e.g. to set the deployment's
// upstream timeout.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[identity.NewClient] baseURL is required")
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// ValidateCredentials resolves an email/password pair to the user's id.
// A 401 from the identity service means the password is wrong, a 404 that
// no such user exists.
func (c *Client) ValidateCredentials(ctx context.Context, email, password string) (uuid.UUID, error) {
	resp, err := c.postJSON(ctx, "/validate-credentials", credentialValidationRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "[Client.ValidateCredentials] post")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return uuid.Nil, ErrInvalidCredentials
	case resp.StatusCode == http.StatusNotFound:
		return uuid.Nil, ErrUserNotFound
	case resp.StatusCode >= 400:
		log.Error().Int("status", resp.StatusCode).Msg("identity service error validating credentials")
		return uuid.Nil, errors.Errorf("[Client.ValidateCredentials] identity service status %d", resp.StatusCode)
	}

	var body userIDResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return uuid.Nil, errors.Wrap(err, "[Client.ValidateCredentials] decode response")
	}

	return body.UserID, nil
}

// EmailExists reports whether a user record already exists for the email.
func (c *Client) EmailExists(ctx context.Context, email string) (bool, error) {
	endpoint := c.baseURL + "/email-exists?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, errors.Wrap(err, "[Client.EmailExists] build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "[Client.EmailExists] do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Error().Int("status", resp.StatusCode).Msg("identity service error checking email")
		return false, errors.Errorf("[Client.EmailExists] identity service status %d", resp.StatusCode)
	}

	var exists bool
	if err := json.NewDecoder(resp.Body).Decode(&exists); err != nil {
		return false, errors.Wrap(err, "[Client.EmailExists] decode response")
	}

	return exists, nil
}

// CreateUser delegates account creation to the identity service.
func (c *Client) CreateUser(ctx context.Context, request RegisterRequest) (Profile, error) {
	resp, err := c.postJSON(ctx, "/create", request)
	if err != nil {
		return Profile{}, errors.Wrap(err, "[Client.CreateUser] post")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Error().Int("status", resp.StatusCode).Msg("identity service error creating user")
		return Profile{}, errors.Errorf("[Client.CreateUser] identity service status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, errors.Wrap(err, "[Client.CreateUser] decode response")
	}

	return profile, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
