package server

import (
	"encoding/json"
	"net/http"

	"github.com/pateldm/go-auth-service/identity"
	"github.com/pateldm/go-auth-service/token"
)

const refreshCookieName = "refreshToken"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	GrantType   string `json:"grantType"`
	AccessToken string `json:"accessToken"`
}

// LoginHandler validates credentials and issues a token pair. The refresh
// token travels only in the cookie; the JSON body carries the access token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
			writeErrorCode(w, http.StatusBadRequest, "REQUEST.INVALID_BODY", "email and password are required")
			return
		}

		issued, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		s.setRefreshCookie(w, issued.RefreshToken)
		writeJSON(w, http.StatusOK, tokenResponse{GrantType: issued.GrantType, AccessToken: issued.AccessToken})
	}
}

// RegisterHandler forwards account creation to the identity service.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req identity.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
			writeErrorCode(w, http.StatusBadRequest, "REQUEST.INVALID_BODY", "email and password are required")
			return
		}

		if err := s.auth.Register(r.Context(), req); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, nil)
	}
}

// RefreshHandler rotates the refresh token presented in the cookie and
// returns a fresh pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presented, err := s.refreshTokenFromCookie(r)
		if err != nil {
			writeError(w, err)
			return
		}

		rotated, err := s.auth.Refresh(r.Context(), presented)
		if err != nil {
			writeError(w, err)
			return
		}

		s.setRefreshCookie(w, rotated.RefreshToken)
		writeJSON(w, http.StatusOK, tokenResponse{GrantType: rotated.GrantType, AccessToken: rotated.AccessToken})
	}
}

// LogoutHandler invalidates the presented refresh token and expires the
// cookie.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presented, err := s.refreshTokenFromCookie(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := s.auth.Logout(r.Context(), presented); err != nil {
			writeError(w, err)
			return
		}

		s.clearRefreshCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) refreshTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", token.ErrNotFound
	}
	return cookie.Value, nil
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(s.codec.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
