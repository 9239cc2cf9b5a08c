package main

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// config represents migration configuration
type config struct {
	CommentUnsupported bool     `toml:"comment_unsupported"`
	Jobs               int      `toml:"jobs"`
	Strict             bool     `toml:"strict"`
	Exclude            []string `toml:"exclude"`
	Color              string   `toml:"color"`
}

func defaultConfig() config {
	return config{Color: "auto"}
}

// loadConfig loads migration configuration from Config.toml in dir
func loadConfig(dir string) config {
	c := defaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, "Config.toml"))
	if err != nil {
		// Config file doesn't exist, return defaults
		return c
	}

	var fileConfig config
	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		// Invalid TOML, return defaults
		return c
	}

	// Use values from file if provided, otherwise keep defaults
	c.CommentUnsupported = fileConfig.CommentUnsupported
	c.Strict = fileConfig.Strict
	if fileConfig.Jobs > 0 {
		c.Jobs = fileConfig.Jobs
	}
	if fileConfig.Exclude != nil {
		c.Exclude = fileConfig.Exclude
	}
	switch fileConfig.Color {
	case "auto", "on", "off":
		c.Color = fileConfig.Color
	}

	return c
}
