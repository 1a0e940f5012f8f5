package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Assembly  AssemblyAIConfig
	Whisper   WhisperConfig
	Grok      GrokConfig
	Gemini    GeminiConfig
	Pipeline  PipelineConfig
	DebugMode bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	DownloadTTL     time.Duration
	UploadTTL       time.Duration
}

// AssemblyAIConfig holds AssemblyAI provider configuration
type AssemblyAIConfig struct {
	APIKey string
}

// WhisperConfig holds the OpenAI-compatible Whisper provider configuration
type WhisperConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// GrokConfig holds the xAI Grok provider configuration
type GrokConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// GeminiConfig holds the Google Gemini provider configuration
type GeminiConfig struct {
	APIKey string
	Model  string
}

// PipelineConfig holds pipeline tuning knobs
type PipelineConfig struct {
	WorkerCount            int
	JobTimeout             time.Duration
	MaxAttempts            int
	RetryDelay             time.Duration
	DownloadTimeout        time.Duration
	MaxAudioBytes          int64
	MinDurationSeconds     float64
	MaxDurationSeconds     float64
	MinSummaryWords        int
	FFmpegBinary           string
	FFprobeBinary          string
	TranscodeTimeout       time.Duration
	TranscriptionProviders []string
	SummarizationProviders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "linkless"),
			Password:    getEnv("DB_PASSWORD", "linkless"),
			Name:        getEnv("DB_NAME", "linkless"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "linkless-audio"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			DownloadTTL:     getEnvAsDuration("STORAGE_DOWNLOAD_TTL", "1h"),
			UploadTTL:       getEnvAsDuration("STORAGE_UPLOAD_TTL", "15m"),
		},
		Assembly: AssemblyAIConfig{
			APIKey: getEnv("ASSEMBLYAI_API_KEY", ""),
		},
		Whisper: WhisperConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_API_URL", "https://api.openai.com"),
			Model:   getEnv("WHISPER_MODEL", "gpt-4o-transcribe"),
		},
		Grok: GrokConfig{
			APIKey:  getEnv("XAI_API_KEY", ""),
			BaseURL: getEnv("XAI_API_URL", "https://api.x.ai"),
			Model:   getEnv("GROK_MODEL", "grok-4-1-fast-non-reasoning"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GOOGLE_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Pipeline: PipelineConfig{
			WorkerCount:            getEnvAsInt("PIPELINE_WORKERS", 4),
			JobTimeout:             getEnvAsDuration("PIPELINE_JOB_TIMEOUT", "5m"),
			MaxAttempts:            getEnvAsInt("PIPELINE_MAX_ATTEMPTS", 2),
			RetryDelay:             getEnvAsDuration("PIPELINE_RETRY_DELAY", "30s"),
			DownloadTimeout:        getEnvAsDuration("PIPELINE_DOWNLOAD_TIMEOUT", "2m"),
			MaxAudioBytes:          getEnvAsInt64("PIPELINE_MAX_AUDIO_BYTES", 25*1024*1024),
			MinDurationSeconds:     getEnvAsFloat("PIPELINE_MIN_DURATION_SECONDS", 1),
			MaxDurationSeconds:     getEnvAsFloat("PIPELINE_MAX_DURATION_SECONDS", 3600),
			MinSummaryWords:        getEnvAsInt("PIPELINE_MIN_SUMMARY_WORDS", 10),
			FFmpegBinary:           getEnv("FFMPEG_BINARY", "ffmpeg"),
			FFprobeBinary:          getEnv("FFPROBE_BINARY", "ffprobe"),
			TranscodeTimeout:       getEnvAsDuration("PIPELINE_TRANSCODE_TIMEOUT", "1m"),
			TranscriptionProviders: getEnvAsList("TRANSCRIPTION_PROVIDERS", "assemblyai,whisper"),
			SummarizationProviders: getEnvAsList("SUMMARIZATION_PROVIDERS", "grok,gemini"),
		},
		DebugMode: getEnvAsBool("DEBUG_MODE", false),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Pipeline.MaxAttempts < 1 {
		return fmt.Errorf("PIPELINE_MAX_ATTEMPTS must be at least 1")
	}
	if len(c.Pipeline.TranscriptionProviders) == 0 {
		return fmt.Errorf("TRANSCRIPTION_PROVIDERS must name at least one provider")
	}
	if len(c.Pipeline.SummarizationProviders) == 0 {
		return fmt.Errorf("SUMMARIZATION_PROVIDERS must name at least one provider")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
