package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTP_PORT string `env:"HTTP_PORT"`
	DB_STRING string `env:"DB_STRING"`

	REDIS_ADDR string `env:"REDIS_ADDR"`

	KAFKA_BROKERS string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC   string `env:"KAFKA_TOPIC"`
	KAFKA_GROUP   string `env:"KAFKA_GROUP"`

	ADMIN_USERNAME   string `env:"ADMIN_USERNAME"`
	ADMIN_PASSWORD   string `env:"ADMIN_PASSWORD"`
	ADMIN_API_KEY    string `env:"ADMIN_API_KEY"`
	ADMIN_DEV_BYPASS bool   `env:"ADMIN_DEV_BYPASS"`

	LINE_CHANNEL_TOKEN string `env:"LINE_CHANNEL_ACCESS_TOKEN"`

	SHIPPING_FEE      int64 `env:"SHIPPING_FEE"`
	FREE_SHIPPING_QTY int   `env:"FREE_SHIPPING_QTY"`

	ENV string `env:"ENV"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT: os.Getenv("HTTP_PORT"),
		DB_STRING: os.Getenv("DB_STRING"),

		REDIS_ADDR: os.Getenv("REDIS_ADDR"),

		KAFKA_BROKERS: os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:   os.Getenv("KAFKA_TOPIC"),
		KAFKA_GROUP:   os.Getenv("KAFKA_GROUP"),

		ADMIN_USERNAME:   os.Getenv("ADMIN_USERNAME"),
		ADMIN_PASSWORD:   os.Getenv("ADMIN_PASSWORD"),
		ADMIN_API_KEY:    os.Getenv("ADMIN_API_KEY"),
		ADMIN_DEV_BYPASS: os.Getenv("ADMIN_DEV_BYPASS") == "true",

		LINE_CHANNEL_TOKEN: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),

		SHIPPING_FEE:      100,
		FREE_SHIPPING_QTY: 2,

		ENV: os.Getenv("ENV"),
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.KAFKA_TOPIC == "" {
		cfg.KAFKA_TOPIC = "order-confirmations"
	}
	if cfg.KAFKA_GROUP == "" {
		cfg.KAFKA_GROUP = "line-notifier"
	}

	if v := os.Getenv("SHIPPING_FEE"); v != "" {
		if fee, err := strconv.ParseInt(v, 10, 64); err == nil && fee >= 0 {
			cfg.SHIPPING_FEE = fee
		}
	}
	if v := os.Getenv("FREE_SHIPPING_QTY"); v != "" {
		if qty, err := strconv.Atoi(v); err == nil && qty > 0 {
			cfg.FREE_SHIPPING_QTY = qty
		}
	}

	return cfg, nil
}

// IsDevelopment controls error detail in responses and nothing else.
func (c *Config) IsDevelopment() bool {
	return c.ENV == "development"
}
