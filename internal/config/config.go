package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string

	// Database
	DatabaseURL string

	// Auth - bearer tokens are verified only when a JWKS URL is configured
	JWKSURL string

	// Collaborator credentials
	OpenAIAPIKey         string
	BraveAPIKey          string
	YouTubeAPIKey        string
	GoogleSearchAPIKey   string
	GoogleSearchEngineID string
	GitHubToken          string
	SpotifyClientID      string
	SpotifyClientSecret  string

	// Search tuning, overridable via platforms.yaml
	Search SearchSettings

	// Debug flags
	Debug bool
}

// SearchSettings tunes the fan-out and the per-platform result counts.
type SearchSettings struct {
	// TimeoutMS is the per-adapter budget; a platform exceeding it settles
	// as a timeout result. This is the only timeout in the pipeline.
	TimeoutMS int `yaml:"timeout_ms"`

	// Platforms overrides per-platform result counts.
	Platforms map[string]PlatformSettings `yaml:"platforms"`
}

// PlatformSettings holds per-platform tuning.
type PlatformSettings struct {
	Count int `yaml:"count"`
}

// Timeout returns the per-adapter budget as a duration.
func (s SearchSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Count returns the configured result count for a platform, or the given
// default when no override exists.
func (s SearchSettings) Count(platform string, def int) int {
	if p, ok := s.Platforms[platform]; ok && p.Count > 0 {
		return p.Count
	}
	return def
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("AUTH_JWKS_URL", ""),

		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		BraveAPIKey:          getEnv("BRAVE_SEARCH_API_KEY", ""),
		YouTubeAPIKey:        getEnv("YOUTUBE_API_KEY", ""),
		GoogleSearchAPIKey:   getEnv("GOOGLE_SEARCH_API_KEY", ""),
		GoogleSearchEngineID: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		GitHubToken:          getEnv("GITHUB_TOKEN", ""),
		SpotifyClientID:      getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret:  getEnv("SPOTIFY_CLIENT_SECRET", ""),

		Search: SearchSettings{
			TimeoutMS: getEnvInt("SEARCH_TIMEOUT_MS", DefaultSearchTimeoutMS),
		},

		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}

	// Optional YAML overrides for search tuning
	if path := getEnv("PLATFORMS_CONFIG", "platforms.yaml"); path != "" {
		if err := loadPlatformsFile(path, &cfg.Search); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
		}
	}

	return cfg
}

// loadPlatformsFile merges YAML overrides into the search settings. A missing
// file is not an error; env/defaults apply.
func loadPlatformsFile(path string, settings *SearchSettings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overrides SearchSettings
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if overrides.TimeoutMS > 0 {
		settings.TimeoutMS = overrides.TimeoutMS
	}
	if len(overrides.Platforms) > 0 {
		settings.Platforms = overrides.Platforms
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
