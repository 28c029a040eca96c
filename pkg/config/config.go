package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration. Values come from config.yaml
// with environment variable overrides; secrets are environment-only.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Geo        GeoConfig        `yaml:"geo"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Blob       BlobConfig       `yaml:"blob"`
	AI         AIConfig         `yaml:"ai"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port int    `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password       string `yaml:"-" env:"PGPASSWORD"`
	Name           string `yaml:"name" env:"PGDATABASE" env-default:"directory"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PG_MAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"PG_MIGRATIONS_PATH" env-default:"migrations"`
}

// GeoConfig points at a Nominatim-compatible geocoding service. UserAgent is
// mandatory for the public instance.
type GeoConfig struct {
	BaseURL   string `yaml:"base_url" env:"GEO_BASE_URL" env-default:"https://nominatim.openstreetmap.org"`
	UserAgent string `yaml:"user_agent" env:"GEO_USER_AGENT" env-default:"directory-engine/1.0"`
}

// ExtractionConfig points at the document analysis service that runs the
// named analyzers over uploaded images and pages.
type ExtractionConfig struct {
	Endpoint     string        `yaml:"endpoint" env:"EXTRACTION_ENDPOINT"`
	APIKey       string        `yaml:"-" env:"EXTRACTION_API_KEY"`
	APIVersion   string        `yaml:"api_version" env:"EXTRACTION_API_VERSION" env-default:"2024-12-01-preview"`
	PollInterval time.Duration `yaml:"poll_interval" env:"EXTRACTION_POLL_INTERVAL" env-default:"2s"`
	PollTimeout  time.Duration `yaml:"poll_timeout" env:"EXTRACTION_POLL_TIMEOUT" env-default:"2m"`
}

type BlobConfig struct {
	AccountName    string `yaml:"account_name" env:"BLOB_ACCOUNT_NAME"`
	AccountKey     string `yaml:"-" env:"BLOB_ACCOUNT_KEY"`
	ImageContainer string `yaml:"image_container" env:"BLOB_IMAGE_CONTAINER" env-default:"venue-images"`
	PageContainer  string `yaml:"page_container" env:"BLOB_PAGE_CONTAINER" env-default:"venue-pages"`
}

type AIConfig struct {
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o"`
}

// DiscoveryConfig tunes nearby-venue resolution for geotagged images.
type DiscoveryConfig struct {
	RadiusMiles float64 `yaml:"radius_miles" env:"DISCOVERY_RADIUS_MILES" env-default:"0.1"`
	MaxResults  int     `yaml:"max_results" env:"DISCOVERY_MAX_RESULTS" env-default:"3"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
}

// Load reads configuration from the given YAML file, then applies environment
// overrides. A missing file is not an error; environment values alone suffice.
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Discovery.RadiusMiles <= 0 {
		return fmt.Errorf("discovery radius must be positive, got %f", c.Discovery.RadiusMiles)
	}
	if c.Discovery.MaxResults <= 0 {
		return fmt.Errorf("discovery max results must be positive, got %d", c.Discovery.MaxResults)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// DatabaseURL renders the database section as a connection URL.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password,
		c.Database.Host, c.Database.Port, c.Database.Name, c.Database.SSLMode)
}
