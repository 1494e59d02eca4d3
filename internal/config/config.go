package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TransportMode selects how the ITSM backend is reached.
type TransportMode string

const (
	// TransportGateway signs HTTP calls through the API gateway endpoint.
	TransportGateway TransportMode = "gateway"
	// TransportFunction invokes the backend functions directly.
	TransportFunction TransportMode = "function"
)

// Config aggregates runtime configuration for the bridge.
type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Knowledge KnowledgeConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Notify    NotifyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// BackendConfig holds ITSM backend connection values.
type BackendConfig struct {
	BaseURL            string
	Region             string
	APIKey             string
	Transport          TransportMode
	CreateFunctionName string
	LookupFunctionName string
	CallTimeoutSeconds int
}

// KnowledgeConfig holds knowledge-base query settings.
type KnowledgeConfig struct {
	KnowledgeBaseID     string
	ModelID             string
	MaxResults          int
	ConfidenceThreshold float64
	CacheTTLSeconds     int
	CacheCapacity       int
}

// RedisConfig holds optional Redis connection values for the external
// cache and session store variants.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// NotifyConfig holds stub notification endpoints.
type NotifyConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	transport := TransportMode(strings.ToLower(getEnv("BACKEND_TRANSPORT", string(TransportGateway))))
	if transport != TransportGateway && transport != TransportFunction {
		return nil, fmt.Errorf("invalid BACKEND_TRANSPORT: %q", transport)
	}

	threshold := getEnvAsFloat("KB_CONFIDENCE_THRESHOLD", 0.7)
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("KB_CONFIDENCE_THRESHOLD out of range: %v", threshold)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "itsm-agent-bridge"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Backend: BackendConfig{
			BaseURL:            strings.TrimRight(os.Getenv("API_GATEWAY_URL"), "/"),
			Region:             getEnv("AWS_REGION", "us-east-1"),
			APIKey:             os.Getenv("API_GATEWAY_KEY"),
			Transport:          transport,
			CreateFunctionName: getEnv("CREATE_ITSM_FUNCTION_NAME", "create-itsm"),
			LookupFunctionName: getEnv("LOOKUP_ITSM_FUNCTION_NAME", "lookup-itsm"),
			CallTimeoutSeconds: getEnvAsInt("API_TIMEOUT", 30),
		},
		Knowledge: KnowledgeConfig{
			KnowledgeBaseID:     os.Getenv("KNOWLEDGE_BASE_ID"),
			ModelID:             getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-sonnet-20240229-v1:0"),
			MaxResults:          getEnvAsInt("KB_MAX_RESULTS", 5),
			ConfidenceThreshold: threshold,
			CacheTTLSeconds:     getEnvAsInt("KB_CACHE_TTL", 3600),
			CacheCapacity:       getEnvAsInt("KB_CACHE_CAPACITY", 100),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CallTimeout returns the per-call backend timeout duration.
func (b BackendConfig) CallTimeout() time.Duration {
	if b.CallTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.CallTimeoutSeconds) * time.Second
}

// CacheTTL returns the knowledge cache entry lifetime.
func (k KnowledgeConfig) CacheTTL() time.Duration {
	if k.CacheTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(k.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
