package oauth

import "errors"

var (
	ErrStateMismatch       = errors.New("oauth state mismatch")
	ErrTokenExchangeFailed = errors.New("provider token exchange failed")
	ErrProviderAPI         = errors.New("provider api error")
)
