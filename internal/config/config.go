package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	ListenAddr string
	BaseURL    string
	DBDSN      string

	GatewayTimeout time.Duration

	Paystack    PaystackConfig
	Flutterwave FlutterwaveConfig
}

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

type FlutterwaveConfig struct {
	SecretKey  string
	SecretHash string
	BaseURL    string
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     getenv("LISTEN_ADDR", ":8080"),
		BaseURL:        getenv("BASE_URL", "http://localhost:8080"),
		DBDSN:          os.Getenv("DB_DSN"),
		GatewayTimeout: getenvDuration("GATEWAY_TIMEOUT", 15*time.Second),
		Paystack: PaystackConfig{
			SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
			BaseURL:   os.Getenv("PAYSTACK_BASE_URL"),
		},
		Flutterwave: FlutterwaveConfig{
			SecretKey:  os.Getenv("FLUTTERWAVE_SECRET_KEY"),
			SecretHash: os.Getenv("FLUTTERWAVE_SECRET_HASH"),
			BaseURL:    os.Getenv("FLUTTERWAVE_BASE_URL"),
		},
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN environment variable is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
