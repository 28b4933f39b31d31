package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Modules   ModulesConfig   `mapstructure:"modules"`
	Evidence  EvidenceConfig  `mapstructure:"evidence"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	// Path to the SQLite database file. ":memory:" is accepted for tests.
	Path string `mapstructure:"path"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type ModulesConfig struct {
	// Dir is scanned for third-party module manifests on top of the
	// built-in units.
	Dir string `mapstructure:"dir"`
}

type EvidenceConfig struct {
	// Dir receives screenshot evidence referenced by task completions.
	Dir string `mapstructure:"dir"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TECHTRAIN")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8090")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("database.path", "data/training.db")
	viper.SetDefault("modules.dir", "modules")
	viper.SetDefault("evidence.dir", "data/screenshots")
	viper.SetDefault("jwt.expire_hours", 8)
	viper.SetDefault("rate_limit.max_requests", 300)
	viper.SetDefault("rate_limit.window_minutes", 1)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if secret := os.Getenv("TECHTRAIN_JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (set jwt.secret or TECHTRAIN_JWT_SECRET)")
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	return &cfg, nil
}
