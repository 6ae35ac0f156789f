package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Addr        string
	CORSOrigins []string
	Env         string
}

func NewServerConfig() *ServerConfig {
	addr := getenv("PORT", ":8080")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return &ServerConfig{
		Addr:        addr,
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),
		Env:         getenv("APP_ENV", "production"),
	}
}

func (c *ServerConfig) Development() bool {
	return c.Env == "development"
}

type AuthConfig struct {
	JWTKey []byte
}

func NewAuthConfig() (*AuthConfig, error) {
	key, err := requireEnv("JWT_KEY")
	if err != nil {
		return nil, err
	}
	return &AuthConfig{JWTKey: []byte(key)}, nil
}

// DirectoryConfig tunes user directory lookups.
type DirectoryConfig struct {
	BatchSize int
	CacheTTL  time.Duration
}

func NewDirectoryConfig() *DirectoryConfig {
	size := getenvInt("DIRECTORY_BATCH_SIZE", 10)
	if size <= 0 {
		size = 10
	}
	return &DirectoryConfig{
		BatchSize: size,
		CacheTTL:  getenvDuration("DIRECTORY_CACHE_TTL", 10*time.Minute),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s not set", key)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
