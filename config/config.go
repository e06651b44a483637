package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Firebase  FirebaseConfig  `mapstructure:"firebase"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// StorageConfig selects the confession store. Type is "postgres" or "memory".
type StorageConfig struct {
	Type        string `mapstructure:"type"`
	DatabaseURL string `mapstructure:"database_url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig is optional; an empty Addr keeps preferences in memory and
// disables rate limiting.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	StaleTime  time.Duration `mapstructure:"stale_time"`
	SweepEvery time.Duration `mapstructure:"sweep_every"`
	MaxAge     time.Duration `mapstructure:"max_age"`
}

type AdminConfig struct {
	PasswordHash string        `mapstructure:"password_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

type FirebaseConfig struct {
	CredentialsPath string `mapstructure:"credentials_path"`
	Topic           string `mapstructure:"topic"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RateLimitConfig struct {
	Limit  int64         `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// TelemetryConfig enables OTLP trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

var ErrMissingDatabaseURL = errors.New("storage.database_url is required for postgres storage")

// LoadConfig reads .env (if present), then config.yaml from the working
// directory or ./config, then environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Println("No config file found, using defaults and environment variables")
	}

	return load(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.type", "postgres")
	v.SetDefault("storage.database_url", "")
	v.SetDefault("storage.auto_migrate", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.stale_time", "0s")
	v.SetDefault("cache.sweep_every", "5m")
	v.SetDefault("cache.max_age", "30m")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.token_ttl", "12h")
	v.SetDefault("firebase.credentials_path", "")
	v.SetDefault("firebase.topic", "moderation")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "confessions")
	v.SetDefault("ratelimit.limit", 30)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "confessly")
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("server.port", "PORT")
	v.BindEnv("storage.database_url", "DATABASE_URL")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")
	v.BindEnv("admin.jwt_secret", "JWT_SECRET")
	v.BindEnv("firebase.credentials_path", "FIREBASE_CREDENTIALS_PATH")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.service_name", "OTEL_SERVICE_NAME")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Storage.Type = strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if cfg.Storage.Type == "postgres" && cfg.Storage.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	cfg.Kafka.Brokers = splitBrokers(cfg.Kafka.Brokers)

	return &cfg, nil
}

func splitBrokers(in []string) []string {
	var out []string
	for _, b := range in {
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
