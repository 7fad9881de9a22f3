package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppMode string `env:"APP_MODE" envDefault:"dev"`

	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"24h"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RateCacheTTL  time.Duration `env:"RATE_CACHE_TTL" envDefault:"5m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
