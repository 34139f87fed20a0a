// internal/workers/advice/faq-assistant/config.go
package faqassistant

import "time"

type Config struct {
	Timeout time.Duration
	// Questions are truncated to this many characters before prompting.
	MaxQuestionLength int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           20 * time.Second,
		MaxQuestionLength: 500,
	}
}
