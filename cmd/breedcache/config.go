package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Store is the cache store to use, "memory" or "sqlite".
	Store string `yaml:"store"`
	// BaseURL of the dog.ceo compatible API.
	BaseURL string `yaml:"baseURL"`
	// Local uses the built-in breed table instead of the API.
	Local bool `yaml:"local"`
	// Port for the serve command.
	Port int `yaml:"port"`
	// Breeds counted when none are given on the command line.
	Breeds []string `yaml:"breeds"`
}

func defaultConfig() Config {
	return Config{
		Store:  "memory",
		Port:   8080,
		Breeds: []string{"hound", "cat"},
	}
}

// getConfig reads the config file on top of the defaults.
// The result is not validated, flags may still override it.
func getConfig(filename string) (Config, error) {
	config := defaultConfig()
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return config, fmt.Errorf("parse %s: %w", filename, err)
	}
	return config, nil
}

func (c Config) validate() error {
	if c.Store != "memory" && c.Store != "sqlite" {
		return fmt.Errorf("unsupported cache store: %s", c.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}
