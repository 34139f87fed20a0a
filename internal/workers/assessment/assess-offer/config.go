// internal/workers/assessment/assess-offer/config.go
package assessoffer

import "time"

type Config struct {
	Timeout time.Duration
	// Chance scores at or above this get the brief counsellor rewrite.
	BriefThreshold int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        45 * time.Second,
		BriefThreshold: 75,
	}
}
