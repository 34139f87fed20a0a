// internal/workers/advice/profile-suggestions/config.go
package profilesuggestions

import "time"

type Config struct {
	Timeout time.Duration
	// Statements shorter than this count as a gap worth flagging.
	MinPSLength  int
	MaxInterests int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      20 * time.Second,
		MinPSLength:  500,
		MaxInterests: 3,
	}
}
