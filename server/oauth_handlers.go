package server

import (
	"net/http"
)

type linkStartResponse struct {
	URL string `json:"url"`
}

type linkResultResponse struct {
	Success           bool   `json:"success"`
	ProviderUsername  string `json:"providerUsername"`
	ProviderAccountID int64  `json:"providerAccountId"`
}

// GithubLinkHandler starts the account-linking flow for the authenticated
// user and returns the provider authorization URL.
func (s *Server) GithubLinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.codec.ExtractBearerSubject(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, err)
			return
		}

		authURL, err := s.broker.BeginLink(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, linkStartResponse{URL: authURL})
	}
}

// GithubCallbackHandler completes the flow when the provider redirects back.
// Authentication comes from the one-time state, not a bearer token; the
// browser arrives here straight from the provider.
func (s *Server) GithubCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			writeErrorCode(w, http.StatusBadRequest, "REQUEST.INVALID_QUERY", "code and state are required")
			return
		}

		result, err := s.links.HandleCallback(r.Context(), code, state)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, linkResultResponse{
			Success:           result.Success,
			ProviderUsername:  result.ProviderUsername,
			ProviderAccountID: result.ProviderAccountID,
		})
	}
}
