package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. Loaded once per process from
// the environment and read-only thereafter.
type Config struct {
	OCR       OCRConfig
	LLM       LLMConfig
	Artifacts ArtifactsConfig
}

// OCRConfig configures the OCR stage client.
type OCRConfig struct {
	Provider    string // "openai" | "gemini" | "tesseract"
	Model       string
	Timeout     time.Duration // per-attempt timeout
	MaxAttempts int
	BackoffBase time.Duration
}

// LLMConfig configures the structuring stage client.
type LLMConfig struct {
	Provider    string // "openai" | "gemini"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

// ArtifactsConfig selects and configures the artifact store backend.
type ArtifactsConfig struct {
	Backend string // "fs" | "sqlite" | "postgres" | "gcs"
	Dir     string // fs: output directory
	DSN     string // sqlite: file path; postgres: connection string
	Bucket  string // gcs: bucket name
}

// GCPConfig is used by the gemini provider and the gcs artifact backend.
type GCPConfig struct {
	ProjectID string
	Region    string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Provider:    getEnv("OCR_PROVIDER", "openai"),
			Model:       getEnv("OCR_MODEL", "gpt-4o-mini"),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			MaxAttempts: getEnvAsInt("OCR_MAX_ATTEMPTS", 3),
			BackoffBase: getEnvAsDuration("OCR_BACKOFF_BASE", 500*time.Millisecond),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			MaxAttempts: getEnvAsInt("LLM_MAX_ATTEMPTS", 3),
			BackoffBase: getEnvAsDuration("LLM_BACKOFF_BASE", 500*time.Millisecond),
		},
		Artifacts: ArtifactsConfig{
			Backend: getEnv("ARTIFACT_BACKEND", "fs"),
			Dir:     getEnv("ARTIFACT_DIR", "./artifacts"),
			DSN:     getEnv("ARTIFACT_DSN", ""),
			Bucket:  getEnv("ARTIFACT_BUCKET", ""),
		},
	}
}

// LoadGCPConfig loads GCP settings for the gemini provider and gcs backend.
func LoadGCPConfig() *GCPConfig {
	return &GCPConfig{
		ProjectID: getEnv("PROJECT_ID", ""),
		Region:    getEnv("VERTEX_AI_REGION", "us-central1"),
	}
}

// Validate checks that the configuration is usable for the selected backends.
func (c *Config) Validate() error {
	if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
		return NewValidationError("OPENAI_API_KEY is required for the openai provider")
	}
	switch c.Artifacts.Backend {
	case "fs":
		if c.Artifacts.Dir == "" {
			return NewValidationError("ARTIFACT_DIR is required for the fs backend")
		}
	case "sqlite", "postgres":
		if c.Artifacts.DSN == "" {
			return NewValidationError("ARTIFACT_DSN is required for the %s backend", c.Artifacts.Backend)
		}
	case "gcs":
		if c.Artifacts.Bucket == "" {
			return NewValidationError("ARTIFACT_BUCKET is required for the gcs backend")
		}
	default:
		return NewValidationError("unknown artifact backend: %q", c.Artifacts.Backend)
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
