package config

import (
	"os"
	"strconv"
)

type Config struct {
	ListenAddr     string
	GRPCAddr       string  // empty disables the gRPC health endpoint
	Duration       float64 // default waveform length in seconds
	MaxDurationSec float64 // upper bound accepted from API requests
	OutputDir      string
	LogDev         bool
}

func Load() *Config {
	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		GRPCAddr:       getEnv("GRPC_ADDR", ""),
		Duration:       getEnvFloat("WAVE_DURATION_SEC", 5),
		MaxDurationSec: getEnvFloat("MAX_DURATION_SEC", 60),
		OutputDir:      getEnv("OUTPUT_DIR", "."),
		LogDev:         getEnvBool("LOG_DEV", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
