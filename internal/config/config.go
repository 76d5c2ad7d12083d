package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	DB     DBConfig
	Dialog DialogConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	db, err := loadDBConfig()
	if err != nil {
		return nil, err
	}

	dialog, err := loadDialogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, DB: db, Dialog: dialog}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the language-model dependency backing the oracle.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	Timeout     time.Duration
}

// Enabled reports whether the required credentials were provided. When
// disabled, every oracle call degrades to its documented fallback.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark-backed chat model from this config.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", 15*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		Timeout:     timeout,
	}, nil
}

// DBBackend selects how chat transcripts are persisted.
type DBBackend string

const (
	BackendSQLite DBBackend = "sqlite"
	BackendMySQL  DBBackend = "mysql"
)

// DBConfig describes the transcript store. SQLite keeps an embedded file
// for local development; MySQL serves shared deployments. The store
// behaves identically on either backend.
type DBConfig struct {
	Backend DBBackend
	Path    string // sqlite file path
	DSN     string // mysql DSN
}

func loadDBConfig() (DBConfig, error) {
	backend := DBBackend(strings.ToLower(getEnvOrDefault("DB_BACKEND", string(BackendSQLite))))
	switch backend {
	case BackendSQLite:
		return DBConfig{
			Backend: BackendSQLite,
			Path:    getEnvOrDefault("DB_PATH", "medical_bot.db"),
		}, nil
	case BackendMySQL:
		dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
		if dsn == "" {
			return DBConfig{}, fmt.Errorf("DB_DSN is required when DB_BACKEND=mysql")
		}
		return DBConfig{Backend: BackendMySQL, DSN: dsn}, nil
	default:
		return DBConfig{}, fmt.Errorf("invalid DB_BACKEND value: %q", backend)
	}
}

// DialogConfig tunes the dialogue engine.
type DialogConfig struct {
	Timezone   string        // booking dates are offered in this zone
	PaymentURL string        // appended to booking confirmations
	SessionTTL time.Duration // 0 means idle sessions are never evicted
}

func loadDialogConfig() (DialogConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", 0)
	if err != nil {
		return DialogConfig{}, err
	}
	if ttl < 0 {
		return DialogConfig{}, fmt.Errorf("SESSION_TTL must not be negative")
	}

	return DialogConfig{
		Timezone:   getEnvOrDefault("BOOKING_TIMEZONE", "Asia/Kolkata"),
		PaymentURL: getEnvOrDefault("BOOKING_PAYMENT_URL", "https://your-booking-url.com"),
		SessionTTL: ttl,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
