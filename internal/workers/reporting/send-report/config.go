// internal/workers/reporting/send-report/config.go
package sendreport

import (
	"time"

	"offr-workers/internal/common/config"
)

type Config struct {
	Timeout   time.Duration
	Enabled   bool
	FromEmail string
	AWSRegion string
}

func LoadConfig(reports config.ReportsConfig) *Config {
	return &Config{
		Timeout:   15 * time.Second,
		Enabled:   reports.Email.Enabled,
		FromEmail: reports.Email.FromEmail,
		AWSRegion: reports.AWS.Region,
	}
}
