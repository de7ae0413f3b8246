// Package accountlink is the HTTP client for the service that persists the
// association between a local user and an external provider identity.
package accountlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LinkRequest is sent once per successful OAuth callback and not retained
// locally.
type LinkRequest struct {
	UserID            uuid.UUID `json:"userId"`
	GithubID          int64     `json:"githubId"`
	GithubUsername    string    `json:"githubUsername"`
	GithubAccessToken string    `json:"githubAccessToken"`
	AvatarURL         *string   `json:"avatarUrl,omitempty"`
}

// UpstreamError carries an error response from the account-link service
// through to the transport boundary with its original status and body
// intact. The link failure is the user-visible outcome, so the context must
// not be flattened into a generic local error.
type UpstreamError struct {
	Status  int
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("account-link service error: status=%d code=%s", e.Status, e.Code)
}

// Client talks to the account-link endpoints of the user service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[accountlink.NewClient] baseURL is required")
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

// Link persists the provider association for the user. Any error response
// is returned as an *UpstreamError.
func (c *Client) Link(ctx context.Context, request LinkRequest) error {
	data, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "[Client.Link] marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/github/link", bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "[Client.Link] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", request.UserID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.Link] do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.upstreamError(resp)
	}

	return nil
}

func (c *Client) upstreamError(resp *http.Response) error {
	upstream := &UpstreamError{Status: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == "" {
		upstream.Code = "LINK.UNKNOWN"
		upstream.Message = "account-link service error without body"
	} else {
		upstream.Code = body.Code
		upstream.Message = body.Message
	}

	log.Error().
		Int("status", upstream.Status).
		Str("code", upstream.Code).
		Msg("account-link service rejected link request")

	return upstream
}
