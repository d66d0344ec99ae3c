package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Env         string        `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string        `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr   string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	LockTTL     time.Duration `yaml:"lock_ttl" env:"LOCK_TTL" env-default:"10s"`
	Tutoring    `yaml:"tutoring"`
}

// Tutoring holds the defaults used until an administrator saves the
// properties row.
type Tutoring struct {
	Start    int    `yaml:"start" env:"TUTORING_START" env-default:"11"`
	End      int    `yaml:"end" env:"TUTORING_END" env-default:"17"`
	Semester string `yaml:"semester" env:"TUTORING_SEMESTER" env-default:"20113"`
}

// Load reads the yaml file at path (falling back to CONFIG_PATH and then
// config/config.yaml) and applies environment overrides. A .env file in the
// working directory is loaded first when it exists.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: dotenv: %w", op, err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	var cfg Config

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// no file: environment only
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Tutoring.Start >= cfg.Tutoring.End {
		return nil, fmt.Errorf("%s: tutoring.start (%d) must be before tutoring.end (%d)", op, cfg.Tutoring.Start, cfg.Tutoring.End)
	}

	return &cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}

	return cfg
}
