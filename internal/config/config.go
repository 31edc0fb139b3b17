package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "COURSEHUB_CONFIG"
	databaseURLEnv        = "DATABASE_URL"
	portEnv               = "PORT"
	sessionKeyEnv         = "SESSION_KEY"
	jwtSecretEnv          = "JWT_SECRET"
	googleClientIDEnv     = "GOOGLE_CLIENT_ID"
	googleClientSecretEnv = "GOOGLE_CLIENT_SECRET"
	googleRedirectURLEnv  = "GOOGLE_REDIRECT_URL"
	instructorAPIURLEnv   = "INSTRUCTOR_API_URL"
	seedCatalogEnv        = "SEED_CATALOG"
	logLevelEnv           = "LOG_LEVEL"

	// DevSessionKey is only acceptable for local development.
	DevSessionKey = "super-secret-default-key"
)

// Config holds every setting the service reads at startup.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Session    SessionConfig    `yaml:"session"`
	OAuth      OAuthConfig      `yaml:"oauth"`
	Auth       AuthConfig       `yaml:"auth"`
	Engine     EngineConfig     `yaml:"engine"`
	Instructor InstructorConfig `yaml:"instructor"`
	Seed       SeedConfig       `yaml:"seed"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig describes the Postgres connection.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Attempts int    `yaml:"attempts"`
}

type SessionConfig struct {
	Key    string `yaml:"key"`
	MaxAge int    `yaml:"maxAge"`
	Secure bool   `yaml:"secure"`
}

// OAuthConfig holds the Google login client.
type OAuthConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectUrl"`
}

// Enabled reports whether Google login is fully configured.
func (o OAuthConfig) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != "" && o.RedirectURL != ""
}

// AuthConfig configures bearer tokens for API clients.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTtl"`
}

// EngineConfig bounds collaborator fetches and the sync cache.
type EngineConfig struct {
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	CacheTTL     time.Duration `yaml:"cacheTtl"`
}

// InstructorConfig points at the trusted instructor-of-record service.
// An empty URL falls back to the stored assignments.
type InstructorConfig struct {
	APIURL  string        `yaml:"apiUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// SeedConfig locates the static catalog. Empty means the built-in one.
type SeedConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads .env, then the YAML file named by COURSEHUB_CONFIG (if any), then
// applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config: .env not loaded, using process environment")
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if fileCfg, err := readFile(path); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, err
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.Database.URL, databaseURLEnv)
	set(&c.Server.Port, portEnv)
	set(&c.Session.Key, sessionKeyEnv)
	set(&c.Auth.JWTSecret, jwtSecretEnv)
	set(&c.OAuth.ClientID, googleClientIDEnv)
	set(&c.OAuth.ClientSecret, googleClientSecretEnv)
	set(&c.OAuth.RedirectURL, googleRedirectURLEnv)
	set(&c.Instructor.APIURL, instructorAPIURLEnv)
	set(&c.Seed.Path, seedCatalogEnv)
	set(&c.Logging.Level, logLevelEnv)
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}

	if override.Database.URL != "" {
		base.Database.URL = override.Database.URL
	}
	if override.Database.Attempts > 0 {
		base.Database.Attempts = override.Database.Attempts
	}

	if override.Session.Key != "" {
		base.Session.Key = override.Session.Key
	}
	if override.Session.MaxAge > 0 {
		base.Session.MaxAge = override.Session.MaxAge
	}
	base.Session.Secure = base.Session.Secure || override.Session.Secure

	if override.OAuth.ClientID != "" {
		base.OAuth.ClientID = override.OAuth.ClientID
	}
	if override.OAuth.ClientSecret != "" {
		base.OAuth.ClientSecret = override.OAuth.ClientSecret
	}
	if override.OAuth.RedirectURL != "" {
		base.OAuth.RedirectURL = override.OAuth.RedirectURL
	}

	if override.Auth.JWTSecret != "" {
		base.Auth.JWTSecret = override.Auth.JWTSecret
	}
	if override.Auth.TokenTTL > 0 {
		base.Auth.TokenTTL = override.Auth.TokenTTL
	}

	if override.Engine.FetchTimeout > 0 {
		base.Engine.FetchTimeout = override.Engine.FetchTimeout
	}
	if override.Engine.CacheTTL > 0 {
		base.Engine.CacheTTL = override.Engine.CacheTTL
	}

	if override.Instructor.APIURL != "" {
		base.Instructor.APIURL = override.Instructor.APIURL
	}
	if override.Instructor.Timeout > 0 {
		base.Instructor.Timeout = override.Instructor.Timeout
	}

	if override.Seed.Path != "" {
		base.Seed.Path = override.Seed.Path
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{URL: "host=db user=postgres password=1234 dbname=testdb port=5432 sslmode=disable", Attempts: 5},
		Session:  SessionConfig{Key: DevSessionKey, MaxAge: 86400 * 7},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour},
		Engine:   EngineConfig{FetchTimeout: 5 * time.Second, CacheTTL: 30 * time.Second},
		Instructor: InstructorConfig{
			Timeout: 3 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
