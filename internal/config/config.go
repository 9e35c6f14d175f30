package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/clauseiq/clauseiq/internal/cache"
	"github.com/clauseiq/clauseiq/internal/database"
	"github.com/clauseiq/clauseiq/internal/handler"
	"github.com/clauseiq/clauseiq/internal/hub"
	"github.com/clauseiq/clauseiq/internal/logging"
	"github.com/clauseiq/clauseiq/internal/storage"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig
	WebSocket hub.Config `mapstructure:"websocket"`
	Database  database.Config
	Storage   StorageConfig
	Cache     CacheConfig
	Upload    handler.UploadLimits
	Log       logging.Config
}

type ServerConfig struct {
	Host string
	Port int
}

// StorageConfig selects and configures the object store backend.
type StorageConfig struct {
	Backend string              `mapstructure:"backend"` // s3, local
	S3      storage.S3Config    `mapstructure:"s3"`
	Local   storage.LocalConfig `mapstructure:"local"`
}

// CacheConfig configures the optional redis message cache.
type CacheConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Redis   cache.RedisConfig `mapstructure:"redis"`
	Prefix  string            `mapstructure:"prefix"`
	TTL     time.Duration     `mapstructure:"ttl"`
}

// Load reads configuration from ./config/config.yaml and the
// environment, applying defaults for every key.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, rely on defaults and env vars.
	}

	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Cache.TTL = parseDuration(v, "cache.ttl", 30*time.Second)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "clauseiq")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "clauseiq")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "clauseiq.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.base_path", "./uploads")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "clauseiq-documents")
	v.SetDefault("storage.s3.use_path_style", false)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.prefix", "clauseiq")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("upload.max_file_size", 50<<20)
	v.SetDefault("upload.max_total_size", 200<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "clauseiq")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("storage.backend", "STORAGE_BACKEND")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("storage.s3.public_url", "S3_PUBLIC_URL")
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("cache.redis.address", "REDIS_ADDRESS")
	v.BindEnv("cache.redis.password", "REDIS_PASSWORD")
	v.BindEnv("log.level", "LOG_LEVEL")
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
