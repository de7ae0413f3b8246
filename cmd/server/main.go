package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pateldm/go-auth-service/accountlink"
	"github.com/pateldm/go-auth-service/auth"
	"github.com/pateldm/go-auth-service/identity"
	"github.com/pateldm/go-auth-service/internal/config"
	"github.com/pateldm/go-auth-service/kvstore"
	"github.com/pateldm/go-auth-service/oauth"
	"github.com/pateldm/go-auth-service/server"
	"github.com/pateldm/go-auth-service/token"
	"github.com/pateldm/go-auth-service/token/refresh"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	srv, err := buildServer(c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func buildServer(c config.Config) (*server.Server, error) {
	store := kvstore.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
	}))

	codec, err := token.NewCodec(token.Config{
		Secret:     c.GetTokenSecret(),
		AccessTTL:  c.GetAccessTokenExpiry(),
		RefreshTTL: c.GetRefreshTokenExpiry(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] NewCodec")
	}

	ledger, err := refresh.NewLedger(store, c.GetRefreshTokenExpiry())
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] NewLedger")
	}

	httpClient := &http.Client{Timeout: c.GetHTTPClientTimeout()}

	identityClient, err := identity.NewClient(c.GetUserServiceURL(), identity.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] identity.NewClient")
	}

	linkClient, err := accountlink.NewClient(c.GetUserServiceURL(), accountlink.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] accountlink.NewClient")
	}

	authService, err := auth.NewService(identityClient, codec, ledger)
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] auth.NewService")
	}

	oauthConfig := oauth.Config{
		ClientID:     c.GetGithubClientID(),
		ClientSecret: c.GetGithubClientSecret(),
		RedirectURI:  c.GetGithubRedirectURI(),
		Scope:        c.GetGithubScope(),
	}

	broker, err := oauth.NewStateBroker(store, oauthConfig)
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] NewStateBroker")
	}

	links, err := oauth.NewLinkService(broker, linkClient, oauthConfig, oauth.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] NewLinkService")
	}

	return server.New(c, authService, codec, broker, links)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
