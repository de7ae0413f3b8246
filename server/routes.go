package server

const (
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteRefresh        = "/refresh"
	RouteLogout         = "/logout"
	RouteGithubLink     = "/github"
	RouteGithubCallback = "/github/callback"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteGithubLink, ChainMiddleware(s.GithubLinkHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteGithubCallback, ChainMiddleware(s.GithubCallbackHandler(), s.APIMiddleware()...))
}
