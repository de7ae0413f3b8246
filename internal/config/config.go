package config

type Config interface {
	EnvConfig
	TokenConfig
	OAuthConfig
	ServicesConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetRedisAddr() string
	GetRedisPassword() string
}

type mainConfig struct {
	EnvVars
	Tokens
	OAuth
	Services
}

func New() Config {
	return mainConfig{}
}
