package server

import (
	"encoding/json"
	"net/http"

	"github.com/pateldm/go-auth-service/accountlink"
	"github.com/pateldm/go-auth-service/identity"
	"github.com/pateldm/go-auth-service/oauth"
	"github.com/pateldm/go-auth-service/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const systemErrorCode = "SYSTEM.001"

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// mapping pins each domain error to a stable HTTP status and error code.
var mapping = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{token.ErrExpired, http.StatusUnauthorized, "TOKEN.EXPIRED", "token has expired"},
	{token.ErrSignatureInvalid, http.StatusUnauthorized, "TOKEN.SIGNATURE_INVALID", "token signature is invalid"},
	{token.ErrMalformed, http.StatusUnauthorized, "TOKEN.MALFORMED", "token is malformed"},
	{token.ErrUnsupported, http.StatusUnauthorized, "TOKEN.UNSUPPORTED", "token type is unsupported"},
	{token.ErrNotFound, http.StatusUnauthorized, "TOKEN.NOT_FOUND", "token not found"},
	{token.ErrInvalid, http.StatusUnauthorized, "TOKEN.INVALID", "token is invalid"},
	{token.ErrUnauthorized, http.StatusUnauthorized, "TOKEN.UNAUTHORIZED", "missing or invalid authorization"},
	{identity.ErrInvalidCredentials, http.StatusUnauthorized, "USER.INVALID_PASSWORD", "invalid credentials"},
	{identity.ErrUserNotFound, http.StatusNotFound, "USER.NOT_FOUND", "user not found"},
	{identity.ErrDuplicateEmail, http.StatusConflict, "USER.DUPLICATE_EMAIL", "email already registered"},
	{oauth.ErrStateMismatch, http.StatusUnauthorized, "OAUTH.STATE_MISMATCH", "oauth state is unknown or already used"},
	{oauth.ErrTokenExchangeFailed, http.StatusBadRequest, "OAUTH.EXCHANGE_FAILED", "authorization code was rejected"},
	{oauth.ErrProviderAPI, http.StatusBadGateway, "OAUTH.PROVIDER_ERROR", "oauth provider is unavailable"},
}

// writeError maps a domain error to its HTTP representation. Account-link
// upstream errors pass through with their original status, code and message.
// Anything unrecognized is logged and collapsed to a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var upstream *accountlink.UpstreamError
	if errors.As(err, &upstream) {
		writeErrorCode(w, upstream.Status, upstream.Code, upstream.Message)
		return
	}

	for _, m := range mapping {
		if errors.Is(err, m.err) {
			writeErrorCode(w, m.status, m.code, m.message)
			return
		}
	}

	log.Error().Err(err).Msg("unexpected error at transport boundary")
	writeErrorCode(w, http.StatusInternalServerError, systemErrorCode, "internal server error")
}
