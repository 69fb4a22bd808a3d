// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server holds the arena server's process configuration.
type Server struct {
	Addr            string `env:"ARENA_ADDR" envDefault:":8080"`
	DBPath          string `env:"ARENA_DB"`
	MediaPreset     string `env:"ARENA_MEDIA_PRESET" envDefault:"basic"`
	AllowAllOrigins bool   `env:"ARENA_ALLOW_ALL_ORIGINS" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
