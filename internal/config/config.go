package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env             string `mapstructure:"env"`
	Port            int    `mapstructure:"port"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	Users      string `mapstructure:"users_collection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic_message_events"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
}

type WSConfig struct {
	PingIntervalSeconds  int   `mapstructure:"ping_interval_seconds"`
	WriteDeadlineSeconds int   `mapstructure:"write_deadline_seconds"`
	ReadDeadlineSeconds  int   `mapstructure:"read_deadline_seconds"`
	MaxMessageSizeBytes  int64 `mapstructure:"max_message_size_bytes"`
	SendBufferSize       int   `mapstructure:"send_buffer_size"`
	RateLimitPerSec      int   `mapstructure:"rate_limit_per_sec"`
}

type MediaConfig struct {
	Backend   string `mapstructure:"backend"` // disk | s3
	Dir       string `mapstructure:"dir"`
	AWSRegion string `mapstructure:"aws_region"`
	AWSBucket string `mapstructure:"aws_bucket"`
}

type RateLimitConfig struct {
	Requests      int `mapstructure:"requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Mongo     MongoConfig     `mapstructure:"mongodb"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	WS        WSConfig        `mapstructure:"ws"`
	Media     MediaConfig     `mapstructure:"media"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// derived
	ShutdownTimeout time.Duration
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	PingInterval    time.Duration
	WriteDeadline   time.Duration
	ReadDeadline    time.Duration
	RateWindow      time.Duration
}

// Load reads the config file (when given) and the environment, applies
// defaults and computes derived durations.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.App.Port == 0 {
		cfg.App.Port = 3000
	}
	if cfg.App.ShutdownSeconds == 0 {
		cfg.App.ShutdownSeconds = 10
	}
	if cfg.App.PublicBaseURL == "" {
		cfg.App.PublicBaseURL = "http://localhost:3000"
	}
	if cfg.JWT.AccessTTLMinutes == 0 {
		cfg.JWT.AccessTTLMinutes = 60
	}
	if cfg.JWT.RefreshTTLDays == 0 {
		cfg.JWT.RefreshTTLDays = 7
	}
	if cfg.WS.PingIntervalSeconds == 0 {
		cfg.WS.PingIntervalSeconds = 25
	}
	if cfg.WS.WriteDeadlineSeconds == 0 {
		cfg.WS.WriteDeadlineSeconds = 10
	}
	if cfg.WS.ReadDeadlineSeconds == 0 {
		cfg.WS.ReadDeadlineSeconds = 60
	}
	if cfg.WS.MaxMessageSizeBytes == 0 {
		cfg.WS.MaxMessageSizeBytes = 64 * 1024
	}
	if cfg.WS.SendBufferSize == 0 {
		cfg.WS.SendBufferSize = 256
	}
	if cfg.WS.RateLimitPerSec == 0 {
		cfg.WS.RateLimitPerSec = 20
	}
	if cfg.Media.Backend == "" {
		cfg.Media.Backend = "disk"
	}
	if cfg.Media.Dir == "" {
		cfg.Media.Dir = "uploads"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "private_messages"
	}
	if cfg.Mongo.Users == "" {
		cfg.Mongo.Users = "users"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}

	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSeconds) * time.Second
	cfg.AccessTTL = time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
	cfg.RefreshTTL = time.Duration(cfg.JWT.RefreshTTLDays) * 24 * time.Hour
	cfg.PingInterval = time.Duration(cfg.WS.PingIntervalSeconds) * time.Second
	cfg.WriteDeadline = time.Duration(cfg.WS.WriteDeadlineSeconds) * time.Second
	cfg.ReadDeadline = time.Duration(cfg.WS.ReadDeadlineSeconds) * time.Second
	cfg.RateWindow = time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	return &cfg, nil
}
