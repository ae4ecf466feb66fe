package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers understood by pkg/storage.
const (
	StorageDriverMinio = "minio"
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Storage  StorageConfig
	Buckets  BucketsConfig
	Archive  ArchiveConfig
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	AutoMigrate    bool
	MigrationsPath string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects and configures the object store driver.
type StorageConfig struct {
	Driver        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Region        string
	UseSSL        bool
	LocalDir      string
	PublicBaseURL string
	Timeout       time.Duration
}

// BucketsConfig names the bucket used for each kind of project asset.
type BucketsConfig struct {
	ProjectImages string
	GanttCharts   string
	Documents     string
}

// ArchiveConfig tunes the archival pipeline and its cleanup workers.
type ArchiveConfig struct {
	Timeout           time.Duration
	LockTTL           time.Duration
	CleanupWorkers    int
	CleanupRetries    int
	CleanupRetryDelay time.Duration
	CacheTTL          time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:    v.GetBool("DB_MIGRATIONS_AUTO"),
		MigrationsPath: v.GetString("DB_MIGRATIONS_PATH"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Storage = StorageConfig{
		Driver:        strings.ToLower(v.GetString("STORAGE_DRIVER")),
		Endpoint:      v.GetString("STORAGE_ENDPOINT"),
		AccessKey:     v.GetString("STORAGE_ACCESS_KEY"),
		SecretKey:     v.GetString("STORAGE_SECRET_KEY"),
		Region:        v.GetString("STORAGE_REGION"),
		UseSSL:        v.GetBool("STORAGE_USE_SSL"),
		LocalDir:      v.GetString("STORAGE_LOCAL_DIR"),
		PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
		Timeout:       parseDuration(v.GetString("STORAGE_TIMEOUT"), 10*time.Second),
	}

	cfg.Buckets = BucketsConfig{
		ProjectImages: v.GetString("BUCKET_PROJECT_IMAGES"),
		GanttCharts:   v.GetString("BUCKET_GANTT_CHARTS"),
		Documents:     v.GetString("BUCKET_DOCUMENTS"),
	}

	cfg.Archive = ArchiveConfig{
		Timeout:           parseDuration(v.GetString("ARCHIVE_TIMEOUT"), 2*time.Minute),
		LockTTL:           parseDuration(v.GetString("ARCHIVE_LOCK_TTL"), 5*time.Minute),
		CleanupWorkers:    v.GetInt("ARCHIVE_CLEANUP_WORKERS"),
		CleanupRetries:    v.GetInt("ARCHIVE_CLEANUP_RETRIES"),
		CleanupRetryDelay: parseDuration(v.GetString("ARCHIVE_CLEANUP_RETRY_DELAY"), 30*time.Second),
		CacheTTL:          parseDuration(v.GetString("ARCHIVE_CACHE_TTL"), time.Hour),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "bidportal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MIGRATIONS_AUTO", true)
	v.SetDefault("DB_MIGRATIONS_PATH", "")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", false)
	v.SetDefault("STORAGE_LOCAL_DIR", "./storage")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/storage")
	v.SetDefault("STORAGE_TIMEOUT", "10s")

	v.SetDefault("BUCKET_PROJECT_IMAGES", "project-images")
	v.SetDefault("BUCKET_GANTT_CHARTS", "gantt-charts")
	v.SetDefault("BUCKET_DOCUMENTS", "task-documents")

	v.SetDefault("ARCHIVE_TIMEOUT", "2m")
	v.SetDefault("ARCHIVE_LOCK_TTL", "5m")
	v.SetDefault("ARCHIVE_CLEANUP_WORKERS", 2)
	v.SetDefault("ARCHIVE_CLEANUP_RETRIES", 5)
	v.SetDefault("ARCHIVE_CLEANUP_RETRY_DELAY", "30s")
	v.SetDefault("ARCHIVE_CACHE_TTL", "1h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
