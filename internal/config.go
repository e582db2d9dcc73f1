package kcbridge

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default listen ports for the two services when neither PORT nor a
// config file sets one.
const (
	DefaultActionPort       = 3000
	DefaultRemoteSchemaPort = 3001
)

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Keycloak struct {
	Host     string        `yaml:"host"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Options struct {
	Verbose bool `yaml:"verbose"`
}

type Config struct {
	Server   Server   `yaml:"server"`
	Keycloak Keycloak `yaml:"keycloak"`
	Options  Options  `yaml:"options"`
}

// NewConfig returns a config populated from the environment. Port is left
// at 0 when PORT is unset so each serve command can apply its own default.
func NewConfig() Config {
	return Config{
		Server: Server{
			Host: "0.0.0.0",
			Port: envInt("PORT", 0),
		},
		Keycloak: Keycloak{
			Host:     envOr("KEYCLOAK_HOST", "http://keycloak:8080"),
			Username: envOr("KEYCLOAK_ADMIN_USER", "admin"),
			Password: envOr("KEYCLOAK_ADMIN_PASSWORD", "admin"),
			Timeout:  0,
		},
	}
}

func LoadConfig(path string) Config {
	var c Config = NewConfig()
	file, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read config file", "error", err)
		return c
	}
	err = yaml.Unmarshal(file, &c)
	if err != nil {
		slog.Error("failed to unmarshal config", "error", err)
		return NewConfig()
	}
	return c
}

func SaveDefaultConfig(path string) {
	path = filepath.Clean(path)
	if path == "" || path == "." {
		path = "config.yaml"
	}
	var c = NewConfig()
	data, err := yaml.Marshal(c)
	if err != nil {
		slog.Error("failed to marshal config", "error", err)
		return
	}
	err = os.WriteFile(path, data, os.ModePerm)
	if err != nil {
		slog.Error("failed to write default config file", "error", err)
		return
	}
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring non-numeric environment variable", "key", key, "value", v)
		return fallback
	}
	return n
}
