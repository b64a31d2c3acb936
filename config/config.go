package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server
	Database  Database
	Auth      Auth
	Redis     Redis
	RateLimit RateLimit
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Auth struct {
	JWTSecret   string
	TokenTTLMin int
}

type Redis struct {
	Addr     string
	Password string
}

type RateLimit struct {
	// Max submissions per student per window. Zero disables the limiter.
	MaxRequests int
	WindowSec   int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("TOKEN_TTL_MIN", 60)
	viper.SetDefault("RATE_LIMIT_MAX", 0)
	viper.SetDefault("RATE_LIMIT_WINDOW_SEC", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenTTLMin = viper.GetInt("TOKEN_TTL_MIN")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")

	config.RateLimit.MaxRequests = viper.GetInt("RATE_LIMIT_MAX")
	config.RateLimit.WindowSec = viper.GetInt("RATE_LIMIT_WINDOW_SEC")

	log.Info().Str("port", config.Server.Port).Str("db_host", config.Database.Host).Msg("Config loaded")
	return &config, nil
}
