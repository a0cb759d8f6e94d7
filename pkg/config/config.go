package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Assembly AssemblyAIConfig
	Whisper  WhisperConfig
	Groq     GroqConfig
	Stream   StreamConfig
	Logging  LoggingConfig
	Pipeline PipelineConfig
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
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Channel  string
}

// StorageConfig holds segment archive configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// AssemblyAIConfig holds AssemblyAI configuration
type AssemblyAIConfig struct {
	APIKey   string
	Language string
}

// WhisperConfig holds the local whisper.cpp configuration
type WhisperConfig struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Threads    int
}

// GroqConfig holds Groq configuration
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// StreamConfig describes the monitored source and the external tools
type StreamConfig struct {
	PageURL         string
	ManifestPattern string
	UserAgent       string
	Referer         string
	STTProvider     string // "assemblyai" or "whisper"
	FFmpegPath      string
	YTDLPPath       string
	ChromePath      string
	Headless        bool
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level string
}

// PipelineConfig holds the monitoring pipeline tunables.
// Variables are read with the PIPELINE_ prefix, e.g. PIPELINE_LOCATOR_TTL.
type PipelineConfig struct {
	LocatorTTL         time.Duration `envconfig:"LOCATOR_TTL" default:"15m"`
	SegmentDuration    time.Duration `envconfig:"SEGMENT_DURATION" default:"60s"`
	MinSegmentBytes    int64         `envconfig:"MIN_SEGMENT_BYTES" default:"10000"`
	PollInterval       time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	TranscribeAttempts int           `envconfig:"TRANSCRIBE_ATTEMPTS" default:"3"`
	RetryBackoff       time.Duration `envconfig:"RETRY_BACKOFF" default:"2s"`
	CallTimeout        time.Duration `envconfig:"CALL_TIMEOUT" default:"2m"`
	SummaryWords       int           `envconfig:"SUMMARY_WORDS" default:"15"`
	SummaryFallback    bool          `envconfig:"SUMMARY_FALLBACK" default:"false"`
	RestartAttempts    int           `envconfig:"RESTART_ATTEMPTS" default:"3"`
	RestartDelay       time.Duration `envconfig:"RESTART_DELAY" default:"5s"`
	RestartWindow      time.Duration `envconfig:"RESTART_WINDOW" default:"5m"`
	StopTimeout        time.Duration `envconfig:"STOP_TIMEOUT" default:"30s"`
	ResolveTimeout     time.Duration `envconfig:"RESOLVE_TIMEOUT" default:"20s"`
	LocatorTimeout     time.Duration `envconfig:"LOCATOR_TIMEOUT" default:"1m"`
	CaptureGrace       time.Duration `envconfig:"CAPTURE_GRACE" default:"5s"`
	SampleRate         int           `envconfig:"SAMPLE_RATE" default:"16000"`
	Channels           int           `envconfig:"CHANNELS" default:"1"`
	WorkDir            string        `envconfig:"WORK_DIR" default:"output/audio"`
	RecentLimit        int           `envconfig:"RECENT_LIMIT" default:"100"`
	WatchEvents        bool          `envconfig:"WATCH_EVENTS" default:"false"`
	ArchiveSegments    bool          `envconfig:"ARCHIVE_SEGMENTS" default:"false"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	config, err := Read()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Read loads configuration without validating it
func Read() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "monitor_agent"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "output/monitor.db"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "monitor:transcripts"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "monitor-agent"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Assembly: AssemblyAIConfig{
			APIKey:   getEnv("ASSEMBLYAI_API_KEY", ""),
			Language: getEnv("ASSEMBLYAI_LANGUAGE", "en"),
		},
		Whisper: WhisperConfig{
			BinaryPath: getEnv("WHISPER_BINARY", "whisper-cli"),
			ModelPath:  getEnv("WHISPER_MODEL", "models/ggml-base.en.bin"),
			Language:   getEnv("WHISPER_LANGUAGE", "en"),
			Threads:    getEnvAsInt("WHISPER_THREADS", 4),
		},
		Groq: GroqConfig{
			APIKey:  getEnv("GROQ_API_KEY", ""),
			BaseURL: getEnv("GROQ_API_URL", "https://api.groq.com"),
			Model:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		},
		Stream: StreamConfig{
			PageURL:         getEnv("STREAM_PAGE_URL", "https://www.livenowfox.com/live"),
			ManifestPattern: getEnv("STREAM_MANIFEST_PATTERN", `manifest\.m3u8`),
			UserAgent:       getEnv("STREAM_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
			Referer:         getEnv("STREAM_REFERER", "https://www.livenowfox.com/"),
			STTProvider:     getEnv("STT_PROVIDER", "assemblyai"),
			FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
			YTDLPPath:       getEnv("YTDLP_PATH", "yt-dlp"),
			ChromePath:      getEnv("CHROME_PATH", ""),
			Headless:        getEnvAsBool("CHROME_HEADLESS", true),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := envconfig.Process("PIPELINE", &config.Pipeline); err != nil {
		return nil, fmt.Errorf("failed to read pipeline configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Stream.STTProvider {
	case "assemblyai":
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when STT_PROVIDER=assemblyai")
		}
	case "whisper":
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("WHISPER_MODEL is required when STT_PROVIDER=whisper")
		}
	default:
		return fmt.Errorf("unsupported STT_PROVIDER %q", c.Stream.STTProvider)
	}
	if c.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return c.Pipeline.Validate()
}

// Validate checks the pipeline tunables for consistency
func (p PipelineConfig) Validate() error {
	if p.LocatorTTL <= 0 {
		return fmt.Errorf("PIPELINE_LOCATOR_TTL must be positive")
	}
	if p.LocatorTimeout < 0 {
		return fmt.Errorf("PIPELINE_LOCATOR_TIMEOUT cannot be negative")
	}
	if p.SegmentDuration <= 0 {
		return fmt.Errorf("PIPELINE_SEGMENT_DURATION must be positive")
	}
	if p.PollInterval <= 0 || p.PollInterval >= p.SegmentDuration {
		return fmt.Errorf("PIPELINE_POLL_INTERVAL must be positive and shorter than the segment duration")
	}
	if p.TranscribeAttempts < 1 {
		return fmt.Errorf("PIPELINE_TRANSCRIBE_ATTEMPTS must be at least 1")
	}
	if p.RestartAttempts < 0 {
		return fmt.Errorf("PIPELINE_RESTART_ATTEMPTS cannot be negative")
	}
	if p.SummaryWords < 1 {
		return fmt.Errorf("PIPELINE_SUMMARY_WORDS must be at least 1")
	}
	if p.SampleRate <= 0 || p.Channels <= 0 {
		return fmt.Errorf("PIPELINE_SAMPLE_RATE and PIPELINE_CHANNELS must be positive")
	}
	if p.WorkDir == "" {
		return fmt.Errorf("PIPELINE_WORK_DIR is required")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.Path
	}
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
