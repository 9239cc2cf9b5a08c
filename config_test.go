package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		createConfig  bool
		expected      config
	}{
		{
			name: "all_settings",
			configContent: `comment_unsupported = true
jobs = 4
strict = true
exclude = ["Generated/", "*.g.cs"]
color = "off"
`,
			createConfig: true,
			expected: config{
				CommentUnsupported: true,
				Jobs:               4,
				Strict:             true,
				Exclude:            []string{"Generated/", "*.g.cs"},
				Color:              "off",
			},
		},
		{
			name:          "only_jobs",
			configContent: "jobs = 2\n",
			createConfig:  true,
			expected:      config{Jobs: 2, Color: "auto"},
		},
		{
			name:          "unknown_color_keeps_default",
			configContent: "color = \"rainbow\"\n",
			createConfig:  true,
			expected:      config{Color: "auto"},
		},
		{
			name:          "invalid_toml",
			configContent: "jobs = \n",
			createConfig:  true,
			expected:      defaultConfig(),
		},
		{
			name:         "no_config_file",
			createConfig: false,
			expected:     defaultConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if tt.createConfig {
				configPath := filepath.Join(tmpDir, "Config.toml")
				if err := os.WriteFile(configPath, []byte(tt.configContent), 0o644); err != nil {
					t.Fatalf("Failed to write Config.toml: %v", err)
				}
			}

			assert.Equal(t, tt.expected, loadConfig(tmpDir))
		})
	}
}
