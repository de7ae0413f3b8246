package config

import "time"

type ServicesConfig interface {
	GetUserServiceURL() string
	GetHTTPClientTimeout() time.Duration
}

type Services struct{}

var _ ServicesConfig = Services{}

// GetUserServiceURL returns the base URL of the service that owns user
// records and account links.
func (Services) GetUserServiceURL() string {
	return GetEnv("USER_SERVICE_URL", "http://localhost:8081")
}

func (Services) GetHTTPClientTimeout() time.Duration {
	return getDurationEnv("HTTP_CLIENT_TIMEOUT", 10*time.Second)
}
