// internal/workers/catalog/search-courses/config.go
package searchcourses

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Index:   "courses",
	}
}
