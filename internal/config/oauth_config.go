package config

type OAuthConfig interface {
	GetGithubClientID() string
	GetGithubClientSecret() string
	GetGithubRedirectURI() string
	GetGithubScope() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetGithubClientID() string {
	return GetEnv("GITHUB_CLIENT_ID", "")
}

func (OAuth) GetGithubClientSecret() string {
	return GetEnv("GITHUB_CLIENT_SECRET", "")
}

func (OAuth) GetGithubRedirectURI() string {
	return GetEnv("GITHUB_REDIRECT_URI", "http://localhost:8080/github/callback")
}

func (OAuth) GetGithubScope() string {
	return GetEnv("GITHUB_SCOPE", "read:user")
}
