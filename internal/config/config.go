package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port    string `mapstructure:"PORT"`
	Env     string `mapstructure:"ENV"`
	AppName string `mapstructure:"APP_NAME"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	DirectoryURL     string        `mapstructure:"DIRECTORY_URL"`
	DirectoryAPIKey  string        `mapstructure:"DIRECTORY_API_KEY"`
	DirectoryTimeout time.Duration `mapstructure:"DIRECTORY_TIMEOUT"`

	AuthURL   string `mapstructure:"AUTH_URL"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	DBDSN string `mapstructure:"DB_DSN"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	VetCacheTTL   time.Duration `mapstructure:"VET_CACHE_TTL"`

	// none|sample. sample solo tiene sentido en desarrollo.
	AgendaFallback string `mapstructure:"AGENDA_FALLBACK"`
	// Sesiones de agenda sin uso por más tiempo se descartan.
	AgendaSessionTTL time.Duration `mapstructure:"AGENDA_SESSION_TTL"`
}

var keys = []string{
	"PORT", "ENV", "APP_NAME",
	"LOG_LEVEL", "LOG_FORMAT",
	"DIRECTORY_URL", "DIRECTORY_API_KEY", "DIRECTORY_TIMEOUT",
	"AUTH_URL", "JWT_SECRET",
	"DB_DSN",
	"REDIS_ADDR", "REDIS_PASSWORD", "VET_CACHE_TTL",
	"AGENDA_FALLBACK", "AGENDA_SESSION_TTL",
}

// Load lee .env (si existe), variables de entorno y, opcionalmente, un
// archivo de config (yaml/json/toml). Env pisa al archivo.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("APP_NAME", "vet-appointments")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DIRECTORY_TIMEOUT", "10s")
	v.SetDefault("VET_CACHE_TTL", "10m")
	v.SetDefault("AGENDA_FALLBACK", "none")
	v.SetDefault("AGENDA_SESSION_TTL", "30m")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate rechaza combinaciones inseguras.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DirectoryTimeout <= 0 {
		return fmt.Errorf("DIRECTORY_TIMEOUT must be positive, got %s", c.DirectoryTimeout)
	}
	fb := strings.ToLower(strings.TrimSpace(c.AgendaFallback))
	if fb != "" && fb != "none" && fb != "sample" {
		return fmt.Errorf("AGENDA_FALLBACK must be \"none\" or \"sample\", got %q", c.AgendaFallback)
	}
	if !c.IsDev() {
		if fb == "sample" {
			return fmt.Errorf("AGENDA_FALLBACK=sample is only allowed with ENV=development")
		}
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
	}
	return nil
}
