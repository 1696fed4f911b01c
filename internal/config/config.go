package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	AllowedOrigins string
	TokenLifetime  time.Duration
	ReportCacheTTL time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	lifetimeHours := viper.GetInt("JWT_EXPIRES_HOURS")
	if lifetimeHours <= 0 {
		lifetimeHours = 24
	}
	cacheTTLSeconds := viper.GetInt("REPORT_CACHE_TTL_SECONDS")
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 60
	}

	return &Config{
		Env:            env,
		Port:           port,
		DatabaseURL:    viper.GetString("DATABASE_URL"),
		RedisURL:       viper.GetString("REDIS_URL"),
		JWTSecret:      viper.GetString("JWT_SECRET"),
		AllowedOrigins: viper.GetString("ALLOWED_ORIGINS"),
		TokenLifetime:  time.Duration(lifetimeHours) * time.Hour,
		ReportCacheTTL: time.Duration(cacheTTLSeconds) * time.Second,
	}, nil
}
