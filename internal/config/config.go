// Package config содержит логику чтения конфигурации кухонного дисплея.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации кухонного дисплея.
type Config struct {
	RunAddress     string `env:"RUN_ADDRESS"`
	BackendAddress string `env:"BACKEND_ADDRESS"`
	SessionFile    string `env:"SESSION_FILE"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envBackendAddress := cfg.BackendAddress
	envSessionFile := cfg.SessionFile

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8090", "address and port for the display HTTP server")
	flag.StringVar(&cfg.BackendAddress, "b", "", "kitchen backend base URL")
	flag.StringVar(&cfg.SessionFile, "s", "kds-session.json", "path to the persisted session file")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envBackendAddress != "" {
		cfg.BackendAddress = envBackendAddress
	}
	if envSessionFile != "" {
		cfg.SessionFile = envSessionFile
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8090"
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = "kds-session.json"
	}

	return cfg, nil
}
