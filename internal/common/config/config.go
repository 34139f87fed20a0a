// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	GenAI    GenAIConfig             `mapstructure:"genai"`
	Scoring  ScoringConfig           `mapstructure:"scoring"`
	Reports  ReportsConfig           `mapstructure:"reports"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Specific Configuration Sections ---

// GenAIConfig holds settings for the generative-AI provider.
type GenAIConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Timeout        int     `mapstructure:"timeout"`         // milliseconds
	MaxRetries     int     `mapstructure:"max_retries"`     // retries after the first attempt
	InitialBackoff int     `mapstructure:"initial_backoff"` // milliseconds
	Temperature    float64 `mapstructure:"temperature"`
}

// ScoringConfig carries the calibrated assessment weights. The defaults in
// loader.go are the production values; changing them changes every verdict.
type ScoringConfig struct {
	Baseline           int `mapstructure:"baseline"`
	IBPointWeight      int `mapstructure:"ib_point_weight"`
	IBSurplusCap       int `mapstructure:"ib_surplus_cap"`
	IBIntlBonus        int `mapstructure:"ib_intl_bonus"`
	IBOnePointPenalty  int `mapstructure:"ib_one_point_penalty"`
	IBTwoPointPenalty  int `mapstructure:"ib_two_point_penalty"`
	IBIntlGapPenalty   int `mapstructure:"ib_intl_gap_penalty"`
	ALMarginWeight     int `mapstructure:"al_margin_weight"`
	ALMarginCap        int `mapstructure:"al_margin_cap"`
	ALShortfallWeight  int `mapstructure:"al_shortfall_weight"`
	ALShortfallCap     int `mapstructure:"al_shortfall_cap"`
	ReachBandCeiling   int `mapstructure:"reach_band_ceiling"`
	TargetBandCeiling  int `mapstructure:"target_band_ceiling"`
}

// ReportsConfig holds settings for emailed assessment reports.
type ReportsConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
