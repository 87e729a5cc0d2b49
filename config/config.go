package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config é um pacote auxiliar. Poderia ser uma lib externa*/

type Config struct {
	Port                   string `mapstructure:"PORT"`
	RedisAddr              string `mapstructure:"REDIS_ADDR"`
	RedisPassword          string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int    `mapstructure:"REDIS_DB"`
	SeedFile               string `mapstructure:"SEED_FILE"`
	WorkerCount            int    `mapstructure:"WORKER_COUNT"`
	DeliveryTimeoutSeconds int    `mapstructure:"DELIVERY_TIMEOUT_SECONDS"`
	PollIntervalMillis     int    `mapstructure:"POLL_INTERVAL_MS"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "4000")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SEED_FILE", "seed.yaml")
	viper.SetDefault("WORKER_COUNT", 4)
	viper.SetDefault("DELIVERY_TIMEOUT_SECONDS", 30)
	viper.SetDefault("POLL_INTERVAL_MS", 250)

	// A missing .env is fine, environment variables and defaults still apply
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	var config Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// DeliveryTimeout returns the outbound HTTP timeout as a duration
func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutSeconds) * time.Second
}

// PollInterval returns the queue poll interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}
