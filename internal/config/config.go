package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey      string
	CORSOrigins []string

	// Enrichment
	EnrichProvider  string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	AnthropicURL    string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	EnrichTimeout   time.Duration
	EnrichRetries   int

	// Enrichment cache (disabled when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Acquisition
	PdftotextPath string
	PdftoppmPath  string
	OCREnabled    bool
	OCRLanguage   string

	// Rendering
	RenderBackend   string
	RenderTimeout   time.Duration
	RenderVerifyFit bool
	WkhtmltopdfPath string
	ChromeBin       string
	ScratchDir      string

	// Output storage
	StoreBackend   string
	OutputDir      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOSecure    bool

	// Worker pool
	WorkerCount      int
	MaxQueueSize     int
	BatchConcurrency int

	// Upload limits
	MaxUploadBytes     int64
	MaxFilesPerRequest int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey:      os.Getenv("API_KEY"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),

		EnrichProvider:  envOr("ENRICH_PROVIDER", "gemini"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AnthropicURL:    os.Getenv("ANTHROPIC_BASE_URL"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		EnrichTimeout:   envDuration("ENRICH_TIMEOUT", 60*time.Second),
		EnrichRetries:   envInt("ENRICH_RETRIES", 2),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		CacheTTL:      envDuration("CACHE_TTL", 24*time.Hour),

		PdftotextPath: envOr("PDFTOTEXT_PATH", "pdftotext"),
		PdftoppmPath:  envOr("PDFTOPPM_PATH", "pdftoppm"),
		OCREnabled:    envBool("OCR_ENABLED", true),
		OCRLanguage:   envOr("OCR_LANGUAGE", "eng"),

		RenderBackend:   envOr("RENDER_BACKEND", "wkhtmltopdf"),
		RenderTimeout:   envDuration("RENDER_TIMEOUT", 30*time.Second),
		RenderVerifyFit: envBool("RENDER_VERIFY_FIT", false),
		WkhtmltopdfPath: envOr("WKHTMLTOPDF_PATH", "wkhtmltopdf"),
		ChromeBin:       os.Getenv("CHROME_BIN"),
		ScratchDir:      envOr("SCRATCH_DIR", os.TempDir()),

		StoreBackend:   envOr("STORE_BACKEND", "fs"),
		OutputDir:      envOr("OUTPUT_DIR", "output"),
		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    envOr("MINIO_BUCKET", "resumeforge"),
		MinIOSecure:    envBool("MINIO_SECURE", false),

		WorkerCount:      envInt("WORKER_COUNT", 4),
		MaxQueueSize:     envInt("MAX_QUEUE_SIZE", 100),
		BatchConcurrency: envInt("BATCH_CONCURRENCY", 4),

		MaxUploadBytes:     envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB
		MaxFilesPerRequest: envInt("MAX_FILES_PER_REQUEST", 20),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	if cfg.EnrichRetries < 0 {
		cfg.EnrichRetries = 0
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.MaxFilesPerRequest <= 0 {
		cfg.MaxFilesPerRequest = 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks that the selected backends exist and have credentials.
func (c Config) Validate() error {
	switch c.EnrichProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "claude":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the claude provider")
		}
	case "openai":
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required for the openai provider")
		}
	case "offline":
	default:
		return fmt.Errorf("unknown ENRICH_PROVIDER %q", c.EnrichProvider)
	}

	switch c.RenderBackend {
	case "wkhtmltopdf", "chrome":
	default:
		return fmt.Errorf("unknown RENDER_BACKEND %q", c.RenderBackend)
	}

	switch c.StoreBackend {
	case "fs":
		if c.OutputDir == "" {
			return fmt.Errorf("OUTPUT_DIR is required for the fs store")
		}
	case "minio":
		if c.MinIOEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.EnrichTimeout <= 0 || c.RenderTimeout <= 0 {
		return fmt.Errorf("ENRICH_TIMEOUT and RENDER_TIMEOUT must be positive")
	}
	return nil
}

// EnrichAPIKey returns the credential of the selected provider.
func (c Config) EnrichAPIKey() string {
	switch c.EnrichProvider {
	case "claude":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "gemini":
		return c.GeminiAPIKey
	}
	return ""
}

// EnrichModel returns the model of the selected provider.
func (c Config) EnrichModel() string {
	switch c.EnrichProvider {
	case "claude":
		return c.AnthropicModel
	case "openai":
		return c.OpenAIModel
	case "gemini":
		return c.GeminiModel
	}
	return ""
}

// EnrichBaseURL returns the endpoint override of the selected provider.
func (c Config) EnrichBaseURL() string {
	switch c.EnrichProvider {
	case "claude":
		return c.AnthropicURL
	case "openai":
		return c.OpenAIBaseURL
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
