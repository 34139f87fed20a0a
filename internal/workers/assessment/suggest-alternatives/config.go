// internal/workers/assessment/suggest-alternatives/config.go
package suggestalternatives

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
