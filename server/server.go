// Package server is the HTTP transport: routing, cookie plumbing,
// error-to-status mapping and middleware.
package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pateldm/go-auth-service/auth"
	"github.com/pateldm/go-auth-service/internal/config"
	"github.com/pateldm/go-auth-service/oauth"
	"github.com/pateldm/go-auth-service/token"
	"github.com/pkg/errors"
)

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	auth   *auth.Service
	codec  *token.Codec
	broker *oauth.StateBroker
	links  *oauth.LinkService
}

func New(config config.Config, authService *auth.Service, codec *token.Codec, broker *oauth.StateBroker, links *oauth.LinkService) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if codec == nil {
		return nil, errors.New("[Server New] token codec is required")
	}
	if broker == nil || links == nil {
		return nil, errors.New("[Server New] oauth components are required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: config,
		auth:   authService,
		codec:  codec,
		broker: broker,
		links:  links,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
