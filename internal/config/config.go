package config

// Config represents the complete acorn-mcp configuration.
// It can be loaded from .acorn-mcp/config.yml with environment variable overrides.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Library  LibraryConfig  `yaml:"library" mapstructure:"library"`
	Import   ImportConfig   `yaml:"import" mapstructure:"import"`
}

// DatabaseConfig locates the item database.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file, ":memory:" for ephemeral
}

// LibraryConfig defines which Acorn files an import run picks up.
type LibraryConfig struct {
	Root    string   `yaml:"root" mapstructure:"root"`       // library root directory
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // parallel parse workers
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "acorn.db",
		},
		Library: LibraryConfig{
			Root: ".",
			Include: []string{
				"**/*.ac",
			},
			Ignore: []string{
				".git/**",
				"**/build/**",
			},
		},
		Import: ImportConfig{
			Workers: 4,
		},
	}
}
