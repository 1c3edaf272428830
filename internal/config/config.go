// Package config loads runtime settings from the environment with an
// optional .env file, via viper. Fee amounts are strings so they go
// straight into decimals without passing through a float.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/KH-Co/Bari-Foods/internal/pricing"
)

type Config struct {
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	BackendURL      string        `mapstructure:"BACKEND_URL"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	JWTKey          string        `mapstructure:"JWT_KEY"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	FreeShipThreshold string `mapstructure:"FREE_SHIP_THRESHOLD"`
	BaseDeliveryFee   string `mapstructure:"BASE_DELIVERY_FEE"`
	ServiceFeeRate    string `mapstructure:"SERVICE_FEE_RATE"`
}

// Load reads the .env file at path if it exists, then the environment.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("BACKEND_URL", "http://localhost:8000")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("JWT_KEY", "dev-only-secret")
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("FREE_SHIP_THRESHOLD", "499.00")
	v.SetDefault("BASE_DELIVERY_FEE", "30.00")
	v.SetDefault("SERVICE_FEE_RATE", "0.02")

	// A missing file is fine; a broken one is not.
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Pricing converts the fee settings into a pricing config.
func (c *Config) Pricing() (pricing.Config, error) {
	threshold, err := decimal.NewFromString(c.FreeShipThreshold)
	if err != nil {
		return pricing.Config{}, fmt.Errorf("parse FREE_SHIP_THRESHOLD: %w", err)
	}
	fee, err := decimal.NewFromString(c.BaseDeliveryFee)
	if err != nil {
		return pricing.Config{}, fmt.Errorf("parse BASE_DELIVERY_FEE: %w", err)
	}
	rate, err := decimal.NewFromString(c.ServiceFeeRate)
	if err != nil {
		return pricing.Config{}, fmt.Errorf("parse SERVICE_FEE_RATE: %w", err)
	}
	return pricing.Config{
		FreeShipThreshold: threshold,
		BaseDeliveryFee:   fee,
		ServiceFeeRate:    rate,
	}, nil
}
