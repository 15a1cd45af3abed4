package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings used to sign download links.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
}

// JWTConfig holds the shared token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// IdentityConfig names the trust headers written by the gateway and read by downstream services.
type IdentityConfig struct {
	UserHeader  string
	RolesHeader string
}

// GatewayConfig holds upstream addresses and the paths that skip token checks.
type GatewayConfig struct {
	AuthServiceURL     string
	DocumentServiceURL string
	PublicPaths        []string
	UpstreamTimeout    time.Duration
}

// BrokerConfig selects and tunes the event channel.
type BrokerConfig struct {
	Kind                   string // memory | nats
	NATSURL                string
	QueueGroup             string
	DocumentCreatedTopic   string
	TranslationResultTopic string
	SendTimeout            time.Duration
	BreakerThreshold       uint32
	NackDelay              time.Duration
}

// RedisConfig holds the Redis connection used by the credential store and the worker dedup.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds credential store settings for the auth service.
type AuthConfig struct {
	Store         string // memory | redis
	BcryptCost    int
	AdminUsername string
	AdminPassword string
}

// DocumentConfig holds document service settings.
type DocumentConfig struct {
	Store             string // memory | postgres
	SeedDepartments   bool
	InternalAPIKey    string
	StorageProxyPath  string
	DefaultPageLimit  int
	MaxPageLimit      int
	EmbeddedTranslate bool
}

// TranslatorConfig holds translation worker settings.
type TranslatorConfig struct {
	Provider           string // glossary | libretranslate
	URL                string
	APIKey             string
	SourceLang         string
	TargetLang         string
	MaxRetries         int
	RetryDelay         time.Duration
	RequestTimeout     time.Duration
	ResultSink         string // events | rest | rest+events
	DocumentServiceURL string
	Dedup              string // memory | redis
	DedupTTL           time.Duration
}

// Ports holds the listen port of every service.
type Ports struct {
	Gateway    string
	Auth       string
	Document   string
	Translator string
}

// AppConfig is the centralized configuration struct for all services.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env        string
	LogLevel   string
	Ports      Ports
	Database   DatabaseConfig
	MinIO      MinIOConfig
	JWT        JWTConfig
	Identity   IdentityConfig
	Gateway    GatewayConfig
	Broker     BrokerConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Document   DocumentConfig
	Translator TranslatorConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	broker := getEnv("BROKER", "memory")
	return &AppConfig{
		Env:      getEnv("APP_ENV", "prod"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Ports: Ports{
			Gateway:    getEnv("GATEWAY_PORT", "8080"),
			Auth:       getEnv("AUTH_PORT", "8081"),
			Document:   getEnv("DOCUMENT_PORT", "8082"),
			Translator: getEnv("TRANSLATOR_PORT", "8083"),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PresignExpiry: getEnvDuration("MINIO_PRESIGN_EXPIRY", 15*time.Minute),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getEnvDuration("JWT_TTL", time.Hour),
			Issuer: getEnv("JWT_ISSUER", "docflow-auth"),
		},
		Identity: IdentityConfig{
			UserHeader:  getEnv("IDENTITY_USER_HEADER", "X-User-Id"),
			RolesHeader: getEnv("IDENTITY_ROLES_HEADER", "X-User-Roles"),
		},
		Gateway: GatewayConfig{
			AuthServiceURL:     getEnv("AUTH_SERVICE_URL", "http://localhost:8081"),
			DocumentServiceURL: getEnv("DOCUMENT_SERVICE_URL", "http://localhost:8082"),
			PublicPaths: getEnvList("GATEWAY_PUBLIC_PATHS", []string{
				"/auth/login", "/auth/token", "/auth/signup", "/healthz", "/health", "/metrics",
			}),
			UpstreamTimeout: getEnvDuration("GATEWAY_UPSTREAM_TIMEOUT", 30*time.Second),
		},
		Broker: BrokerConfig{
			Kind:                   broker,
			NATSURL:                getEnv("NATS_URL", "nats://localhost:4222"),
			QueueGroup:             getEnv("NATS_QUEUE_GROUP", "docflow"),
			DocumentCreatedTopic:   getEnv("TOPIC_DOCUMENT_CREATED", "document-created"),
			TranslationResultTopic: getEnv("TOPIC_TRANSLATION_RESULT", "translation-result"),
			SendTimeout:            getEnvDuration("BROKER_SEND_TIMEOUT", 5*time.Second),
			BreakerThreshold:       uint32(getEnvInt("BROKER_BREAKER_THRESHOLD", 5)),
			NackDelay:              getEnvDuration("BROKER_NACK_DELAY", time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Store:         getEnv("AUTH_STORE", "memory"),
			BcryptCost:    getEnvInt("BCRYPT_COST", 10),
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Document: DocumentConfig{
			Store:             getEnv("DOCUMENT_STORE", "memory"),
			SeedDepartments:   getEnvBool("SEED_DEPARTMENTS", true),
			InternalAPIKey:    getEnv("INTERNAL_API_KEY", ""),
			StorageProxyPath:  getEnv("STORAGE_PROXY_PATH", "/api/storage/presigned-url/"),
			DefaultPageLimit:  getEnvInt("PAGE_DEFAULT_LIMIT", 10),
			MaxPageLimit:      getEnvInt("PAGE_MAX_LIMIT", 100),
			// the in-memory channel only reaches subscribers in this process
			EmbeddedTranslate: getEnvBool("TRANSLATOR_EMBEDDED", broker == "memory"),
		},
		Translator: TranslatorConfig{
			Provider:           getEnv("TRANSLATOR_PROVIDER", "glossary"),
			URL:                getEnv("TRANSLATOR_URL", "http://localhost:5000"),
			APIKey:             getEnv("TRANSLATOR_API_KEY", ""),
			SourceLang:         getEnv("TRANSLATOR_SOURCE_LANG", "en"),
			TargetLang:         getEnv("TRANSLATOR_TARGET_LANG", "es"),
			MaxRetries:         getEnvInt("TRANSLATOR_MAX_RETRIES", 3),
			RetryDelay:         getEnvDuration("TRANSLATOR_RETRY_DELAY", time.Second),
			RequestTimeout:     getEnvDuration("TRANSLATOR_REQUEST_TIMEOUT", 30*time.Second),
			ResultSink:         getEnv("TRANSLATOR_RESULT_SINK", "events"),
			DocumentServiceURL: getEnv("DOCUMENT_SERVICE_URL", "http://localhost:8082"),
			Dedup:              getEnv("TRANSLATOR_DEDUP", "memory"),
			DedupTTL:           getEnvDuration("TRANSLATOR_DEDUP_TTL", 10*time.Minute),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvList splits a comma-separated value, dropping blank entries.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
