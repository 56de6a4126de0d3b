package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Board   BoardConfig
	Enhance EnhanceConfig
	SMTP    SMTPConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// BoardConfig controls the real-time board fan-out.
type BoardConfig struct {
	// Channel is the Redis pub/sub channel used to mirror board events
	// across instances. Empty disables the cross-instance bridge.
	Channel string
	// RateLimitRPS / RateLimitBurst bound per-client note mutations.
	RateLimitRPS   float64
	RateLimitBurst int
}

// EnhanceConfig points at the upstream chat-completions API used for
// note text enhancement.
type EnhanceConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "notewall")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	viper.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	viper.SetDefault("BOARD_CHANNEL", "notewall:board")
	viper.SetDefault("BOARD_RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("BOARD_RATE_LIMIT_BURST", 20)
	viper.SetDefault("ENHANCE_BASE_URL", "https://openrouter.ai/api/v1")
	viper.SetDefault("ENHANCE_MODEL", "openai/gpt-4o-mini")
	viper.SetDefault("ENHANCE_TIMEOUT", 30)
	viper.SetDefault("SMTP_PORT", 587)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		JWT: JWTConfig{
			Secret:          os.Getenv("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(viper.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		Board: BoardConfig{
			Channel:        viper.GetString("BOARD_CHANNEL"),
			RateLimitRPS:   viper.GetFloat64("BOARD_RATE_LIMIT_RPS"),
			RateLimitBurst: viper.GetInt("BOARD_RATE_LIMIT_BURST"),
		},
		Enhance: EnhanceConfig{
			BaseURL: viper.GetString("ENHANCE_BASE_URL"),
			APIKey:  os.Getenv("ENHANCE_API_KEY"),
			Model:   viper.GetString("ENHANCE_MODEL"),
			Timeout: time.Duration(viper.GetInt("ENHANCE_TIMEOUT")) * time.Second,
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		log.Println("WARNING: JWT_SECRET is not set; set a secure value in production")
	}

	return cfg, nil
}
