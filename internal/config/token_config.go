package config

import "time"

type TokenConfig interface {
	GetTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

// GetTokenSecret returns the base64-encoded signing secret. There is no
// default; the service refuses to start without one.
func (Tokens) GetTokenSecret() string {
	return GetEnv("TOKEN_SECRET", "")
}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return getDurationEnv("ACCESS_TOKEN_EXPIRY", 30*time.Minute)
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return getDurationEnv("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
}

func getDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(GetEnv(envVar, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
