package api

import "time"

// Config holds server configuration.
type Config struct {
	Port              int
	RateLimitRequests int           // Requests per minute (0 = disabled)
	RateLimitBurst    int           // Burst size
	AllowedOrigins    []string      // CORS allowed origins (empty = allow all)
	CacheTTL          time.Duration // Lifetime of memoized query results
	CacheSize         int           // Maximum memoized results (0 = unbounded)
	Version           string
}

// DefaultConfig returns the configuration used by `pedigree serve`.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		RateLimitBurst: 10,
		CacheTTL:       10 * time.Minute,
		CacheSize:      4096,
		Version:        "dev",
	}
}
