package config

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const insecureJWTSecret = "change-me-housing-service-secret"

// Config holds all configuration for the service.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	GRPCPort    string `mapstructure:"GRPC_PORT"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	NATSURL string `mapstructure:"NATS_URL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPEmail    string `mapstructure:"SMTP_EMAIL"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	CleanupInterval    time.Duration `mapstructure:"CLEANUP_INTERVAL"`
	CleanupBatchSize   int           `mapstructure:"CLEANUP_BATCH_SIZE"`
	CleanupMaxAttempts int           `mapstructure:"CLEANUP_MAX_ATTEMPTS"`

	EnrichConcurrency  int           `mapstructure:"ENRICH_CONCURRENCY"`
	LikeConfirmTimeout time.Duration `mapstructure:"LIKE_CONFIRM_TIMEOUT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "housing-service")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("GRPC_PORT", "50055")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "student_housing")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("JWT_SECRET", insecureJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "housing")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_EMAIL", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9095")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("CLEANUP_INTERVAL", "30s")
	v.SetDefault("CLEANUP_BATCH_SIZE", 20)
	v.SetDefault("CLEANUP_MAX_ATTEMPTS", 8)
	v.SetDefault("ENRICH_CONCURRENCY", 8)
	v.SetDefault("LIKE_CONFIRM_TIMEOUT", "3s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// LoadConfig reads configuration from the environment; .env is loaded by main before this runs.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == insecureJWTSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Set a strong secret in the environment.")
	}
	if cfg.SMTPEmail == "" {
		appLogger.Info("SMTP_EMAIL is empty, listing confirmation emails are disabled")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("minio_endpoint", cfg.MinioEndpoint),
		zap.String("minio_bucket", cfg.MinioBucket),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.MongoURI == "":
		return fmt.Errorf("MONGO_URI is required")
	case c.MongoDatabase == "":
		return fmt.Errorf("MONGO_DATABASE is required")
	case c.JWTSecret == "":
		return fmt.Errorf("JWT_SECRET is required")
	case c.MinioBucket == "":
		return fmt.Errorf("MINIO_BUCKET is required")
	case c.JWTTTL <= 0:
		return fmt.Errorf("JWT_TTL must be positive")
	case c.CleanupInterval <= 0:
		return fmt.Errorf("CLEANUP_INTERVAL must be positive")
	case c.EnrichConcurrency <= 0:
		return fmt.Errorf("ENRICH_CONCURRENCY must be positive")
	}
	return nil
}
