package config

import "time"

// RateLimitConfig defines settings for the credential-endpoint rate
// limiter. When Enabled is false or no Redis client is available the
// middleware becomes a no-op. Requests is the number of attempts a
// single client IP may make per Window against the login and
// password-reset-request endpoints.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig. Defaults are used when variables are not set.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:  getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Requests: intenv("RATE_LIMIT_REQUESTS", 10),
		Window:   parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
	}
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}
