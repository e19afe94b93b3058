package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/crm-assistant/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr     string        `env:"SERVER_ADDR" envDefault:":8000"`
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"120s"`

	// Storage configuration
	StorageDriver       string               `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL         string               `env:"DATABASE_URL"`
	DBMaxConns          int                  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int                  `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration        `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration        `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration        `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	DBConnectRetry      pkgRetry.RetryConfig `envPrefix:"DB_CONNECT_RETRY_"`

	// External service configurations
	LLMCfg       LLMConfig       `envPrefix:"LLM_"`
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBEDDING_"`
	VectorCfg    VectorConfig    `envPrefix:"VECTOR_"`
	ChatCfg      ChatConfig      `envPrefix:"CHAT_"`

	// Logging configuration
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  LogFileConfig `envPrefix:"LOG_FILE_"`

	// Tracing configuration
	OTelCfg OTelConfig `envPrefix:"OTEL_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConfig struct {
	HTTPClientConfig
	APIKey      string  `env:"API_KEY"`
	BaseURL     string  `env:"BASE_URL"`
	Model       string  `env:"MODEL" envDefault:"gpt-3.5-turbo"`
	Temperature float32 `env:"TEMPERATURE" envDefault:"0.7"`
}

type EmbeddingConfig struct {
	HTTPClientConfig
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL"`
	Model   string `env:"MODEL" envDefault:"text-embedding-3-small"`
}

// VectorConfig controls how uploaded documents are chunked, indexed and searched
type VectorConfig struct {
	StoreDir      string        `env:"STORE_DIR" envDefault:"./vector_stores"`
	ChunkSize     int           `env:"CHUNK_SIZE" envDefault:"500"`
	ChunkOverlap  int           `env:"CHUNK_OVERLAP" envDefault:"50"`
	MinSimilarity float32       `env:"MIN_SIMILARITY" envDefault:"0.2"`
	Compress      bool          `env:"COMPRESS" envDefault:"false"`
	IndexCacheTTL time.Duration `env:"INDEX_CACHE_TTL" envDefault:"10m"`
}

type ChatConfig struct {
	HistoryLimit  int `env:"HISTORY_LIMIT" envDefault:"10"`
	TopK          int `env:"TOP_K" envDefault:"3"`
	ChunksPerFile int `env:"CHUNKS_PER_FILE" envDefault:"2"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
}

// LogFileConfig enables a rotated JSON log file next to console output
type LogFileConfig struct {
	Path       string `env:"PATH"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"30"`
}

type OTelConfig struct {
	Enabled     bool    `env:"ENABLED" envDefault:"false"`
	Endpoint    string  `env:"EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	Insecure    bool    `env:"EXPORTER_OTLP_INSECURE" envDefault:"true"`
	ServiceName string  `env:"SERVICE_NAME" envDefault:"crm-assistant"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`   // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Variables may also be set externally, so a missing file is not fatal.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag
	return cfg, nil
}

// Parse reads the configuration from the process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	case StorageDriverMemory:
	default:
		errors = append(errors, fmt.Sprintf("STORAGE_DRIVER must be postgres or memory, got %q", cfg.StorageDriver))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if !cfg.EnableMocks && cfg.LLMCfg.APIKey == "" {
		errors = append(errors, "LLM_API_KEY is required unless ENABLE_MOCKS=true")
	}

	if cfg.LLMCfg.Temperature < 0 || cfg.LLMCfg.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("LLM_TEMPERATURE must be between 0 and 2, got %v", cfg.LLMCfg.Temperature))
	}

	if cfg.VectorCfg.ChunkSize < 1 {
		errors = append(errors, fmt.Sprintf("VECTOR_CHUNK_SIZE must be positive, got %d", cfg.VectorCfg.ChunkSize))
	}

	if cfg.VectorCfg.ChunkOverlap < 0 || cfg.VectorCfg.ChunkOverlap >= cfg.VectorCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("VECTOR_CHUNK_OVERLAP must be between 0 and VECTOR_CHUNK_SIZE(%d), got %d",
			cfg.VectorCfg.ChunkSize, cfg.VectorCfg.ChunkOverlap))
	}

	if cfg.VectorCfg.MinSimilarity < -1 || cfg.VectorCfg.MinSimilarity > 1 {
		errors = append(errors, fmt.Sprintf("VECTOR_MIN_SIMILARITY must be between -1 and 1, got %v", cfg.VectorCfg.MinSimilarity))
	}

	if cfg.ChatCfg.HistoryLimit < 0 {
		errors = append(errors, fmt.Sprintf("CHAT_HISTORY_LIMIT must not be negative, got %d", cfg.ChatCfg.HistoryLimit))
	}

	if cfg.ChatCfg.TopK < 1 || cfg.ChatCfg.ChunksPerFile < 1 {
		errors = append(errors, "CHAT_TOP_K and CHAT_CHUNKS_PER_FILE must be positive")
	}

	if cfg.FileUploadCfg.MaxFileSize < 1 || cfg.FileUploadCfg.MaxFileSize > cfg.FileUploadCfg.MaxUploadSize {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_FILE_SIZE must be between 1 and FILE_UPLOAD_MAX_UPLOAD_SIZE(%d), got %d",
			cfg.FileUploadCfg.MaxUploadSize, cfg.FileUploadCfg.MaxFileSize))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
