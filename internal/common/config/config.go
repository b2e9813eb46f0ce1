package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port      int    `env:"PORT" envDefault:"8080"`
		PublicURL string `env:"PUBLIC_URL"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN,required"`
	}

	Store struct {
		DSN string `env:"DATABASE_DSN,required"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Admin struct {
		// FallbackID is used whenever the admin_contact_id setting is
		// absent or malformed.
		FallbackID int64 `env:"ADMIN_FALLBACK_ID,required"`
	}

	Cache struct {
		ConfigTTLSeconds int `env:"CONFIG_TTL_SECONDS" envDefault:"300"`
	}
}

func (c *Config) ConfigTTL() time.Duration {
	return time.Duration(c.Cache.ConfigTTLSeconds) * time.Second
}

// CacheEnabled reports whether the optional Redis profile cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

func Load() (*Config, error) {
	// Ignore a missing .env file; in production the variables are set
	// directly on the process.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
