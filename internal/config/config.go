package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env-default:"info"`
	HTTPPort  string    `yaml:"http-port" env-default:"8080"`
	Redis     Redis     `yaml:"redis"`
	RateLimit RateLimit `yaml:"rate-limit"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env-default:"false"`
	Host    string `yaml:"host" env-default:"localhost"`
	Port    string `yaml:"port" env-default:"6379"`
}

type RateLimit struct {
	Enabled   bool `yaml:"enabled" env-default:"true"`
	PerMinute int  `yaml:"per-minute" env-default:"60"`
	PerHour   int  `yaml:"per-hour" env-default:"1000"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
