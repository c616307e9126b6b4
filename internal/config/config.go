// Package config loads the process configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully resolved process configuration.
type Config struct {
	Address string
	DevLogs bool

	AuthTokens []string

	Database  DatabaseConfig
	Embed     EmbeddingConfig
	LLM       LLMConfig
	Reranker  RerankerConfig
	Search    SearchConfig
	Managers  ManagerConfig
	Migration MigrationConfig
}

// DatabaseConfig captures the Postgres connection string and pool
// limits.
type DatabaseConfig struct {
	URL            string
	MaxConnections int
}

// EmbeddingConfig describes the embedding provider settings,
// including an optional second host for the ingest-side model so
// query and passage embedding never share one critical section.
type EmbeddingConfig struct {
	Host       string
	IngestHost string
	Model      string
	Dimension  int
}

// LLMConfig describes the chat-completion collaborator.
type LLMConfig struct {
	Provider   string // ollama | openai | openai_compatible
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// RerankerConfig describes the optional cross-encoder collaborator.
type RerankerConfig struct {
	Enabled bool
	Host    string
	Timeout time.Duration
}

// SearchConfig holds search-service tunables: default page size and
// the query-rewrite cache.
type SearchConfig struct {
	TopK                  int
	EnableQueryRewrite    bool
	QueryRewriteCacheSize int
	QueryRewriteTimeout   time.Duration
}

// ManagerConfig holds the background managers' intervals and the
// episode-decay tunables.
type ManagerConfig struct {
	ForgettingIntervalSecs     int
	EpisodeDecayIntervalSecs   int
	ProfileRefreshIntervalSecs int
	EpisodeDecayDays           float64
	EpisodeDecayFactor         float64
	EpisodeDecayThreshold      float64
	EpisodeDecayGraceDays      float64
}

// MigrationConfig holds the operator's dimension-migration override.
type MigrationConfig struct {
	ForceRebuild bool
}

// FromEnv loads a .env file if present (absence is not an error) and
// resolves every field from the environment, applying the same
// getEnv/getEnvInt defaulting shape the pack uses elsewhere,
// generalized with boolean/duration/float variants.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Address: getEnv("MOMO_ADDRESS", ":8080"),
		DevLogs: getEnvBool("MOMO_DEV_LOGS", false),
		Database: DatabaseConfig{
			URL:            getEnv("MOMO_DATABASE_URL", ""),
			MaxConnections: getEnvInt("MOMO_DATABASE_MAX_CONNECTIONS", 10),
		},
		Embed: EmbeddingConfig{
			Host:       strings.TrimRight(getEnv("MOMO_EMBED_HOST", "http://localhost:11434"), "/"),
			IngestHost: strings.TrimRight(getEnv("MOMO_EMBED_INGEST_HOST", ""), "/"),
			Model:      getEnv("MOMO_EMBED_MODEL", "nomic-embed-text"),
			Dimension:  getEnvInt("MOMO_EMBED_DIMENSION", 768),
		},
		LLM: LLMConfig{
			Provider:   getEnv("MOMO_LLM_PROVIDER", "ollama"),
			BaseURL:    strings.TrimRight(getEnv("MOMO_LLM_BASE_URL", "http://localhost:11434"), "/"),
			Model:      getEnv("MOMO_LLM_MODEL", ""),
			APIKey:     getEnv("MOMO_LLM_API_KEY", ""),
			Timeout:    getEnvDuration("MOMO_LLM_TIMEOUT", 30*time.Second),
			MaxRetries: getEnvInt("MOMO_LLM_MAX_RETRIES", 3),
		},
		Reranker: RerankerConfig{
			Enabled: getEnvBool("MOMO_RERANKER_ENABLED", false),
			Host:    strings.TrimRight(getEnv("MOMO_RERANKER_HOST", ""), "/"),
			Timeout: getEnvDuration("MOMO_RERANKER_TIMEOUT", 5*time.Second),
		},
		Search: SearchConfig{
			TopK:                  getEnvInt("MOMO_SEARCH_TOP_K", 6),
			EnableQueryRewrite:    getEnvBool("MOMO_ENABLE_QUERY_REWRITE", false),
			QueryRewriteCacheSize: getEnvInt("MOMO_QUERY_REWRITE_CACHE_SIZE", 1000),
			QueryRewriteTimeout:   getEnvDuration("MOMO_QUERY_REWRITE_TIMEOUT", 2*time.Second),
		},
		Managers: ManagerConfig{
			ForgettingIntervalSecs:     getEnvInt("MOMO_FORGETTING_INTERVAL_SECS", 300),
			EpisodeDecayIntervalSecs:   getEnvInt("MOMO_EPISODE_DECAY_INTERVAL_SECS", 86400),
			ProfileRefreshIntervalSecs: getEnvInt("MOMO_PROFILE_REFRESH_INTERVAL_SECS", 900),
			EpisodeDecayDays:           getEnvFloat("MOMO_EPISODE_DECAY_DAYS", 30),
			EpisodeDecayFactor:         getEnvFloat("MOMO_EPISODE_DECAY_FACTOR", 0.9),
			EpisodeDecayThreshold:      getEnvFloat("MOMO_EPISODE_DECAY_THRESHOLD", 0.5),
			EpisodeDecayGraceDays:      getEnvFloat("MOMO_EPISODE_DECAY_GRACE_DAYS", 10),
		},
		Migration: MigrationConfig{
			ForceRebuild: getEnvBool("MOMO_MIGRATION_FORCE_REBUILD", false),
		},
	}

	if tokens := getEnv("MOMO_AUTH_TOKENS", ""); tokens != "" {
		for _, t := range strings.Split(tokens, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.AuthTokens = append(cfg.AuthTokens, t)
			}
		}
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("MOMO_DATABASE_URL must not be empty")
	}
	if cfg.Embed.Model == "" {
		return nil, fmt.Errorf("MOMO_EMBED_MODEL must not be empty")
	}
	if cfg.Embed.Dimension <= 0 {
		return nil, fmt.Errorf("MOMO_EMBED_DIMENSION must be positive")
	}
	if cfg.Search.TopK <= 0 {
		cfg.Search.TopK = 6
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
