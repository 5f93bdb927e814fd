// Package config loads cfim settings from YAML and the environment.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/logging"
)

const (
	defaultDBPath = "cfim.db"
	defaultOutDir = "out"
	defaultAddr   = ":8080"
)

// Config holds application configuration.
type Config struct {
	DBPath   string         `yaml:"db_path"`
	SeedPath string         `yaml:"seed_path"`
	OutDir   string         `yaml:"out_dir"`
	Logging  logging.Config `yaml:"logging"`
	Resolver ResolverConfig `yaml:"resolver"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ResolverConfig is the YAML form of fandom.Config.
type ResolverConfig struct {
	LevenshteinSearch                bool `yaml:"levenshtein_search"`
	LevenshteinMinChar               int  `yaml:"levenshtein_min_char"`
	LevenshteinMaxDiff               int  `yaml:"levenshtein_max_diff"`
	LevenshteinSearchOnFindingGroups bool `yaml:"levenshtein_search_on_finding_groups"`
	RegexMatchFull                   bool `yaml:"regex_match_full"`
	MaxDepth                         int  `yaml:"max_depth"`
}

// ServerConfig configures `cfim serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// MetricsConfig configures metric export for batch runs.
type MetricsConfig struct {
	// Textfile is written after extraction for a node-exporter textfile collector.
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	fc := fandom.DefaultConfig()
	return &Config{
		DBPath:  defaultDBPath,
		OutDir:  defaultOutDir,
		Logging: logging.DefaultConfig(),
		Resolver: ResolverConfig{
			LevenshteinSearch:                fc.LevenshteinSearch,
			LevenshteinMinChar:               fc.LevenshteinMinChar,
			LevenshteinMaxDiff:               fc.LevenshteinMaxDiff,
			LevenshteinSearchOnFindingGroups: fc.LevenshteinSearchOnFindingGroups,
			RegexMatchFull:                   fc.RegexMatchFull,
			MaxDepth:                         fc.MaxDepth,
		},
		Server: ServerConfig{Addr: defaultAddr},
	}
}

// configPaths returns the list of paths to search for config file.
func configPaths() []string {
	paths := []string{
		".cfim.yaml",
		".cfim.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "cfim", "config.yaml"),
		)
	}

	return paths
}

// Load loads configuration from file or returns defaults.
// Priority: env CFIM_CONFIG > search paths > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if envPath := os.Getenv("CFIM_CONFIG"); envPath != "" {
		if err := cfg.loadFromFile(envPath); err != nil {
			return nil, err
		}
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvOverrides() {
	if dbPath := os.Getenv("CFIM_DB"); dbPath != "" {
		c.DBPath = dbPath
	}
	if seed := os.Getenv("CFIM_SEED"); seed != "" {
		c.SeedPath = seed
	}
	if out := os.Getenv("CFIM_OUT_DIR"); out != "" {
		c.OutDir = out
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes the configuration to path, refusing to overwrite.
func (c *Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // #nosec G302 G304
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// GetDBPath returns the database path, applying defaults.
func (c *Config) GetDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return defaultDBPath
}

// GetOutDir returns the JSON output directory.
func (c *Config) GetOutDir() string {
	if c.OutDir != "" {
		return c.OutDir
	}
	return defaultOutDir
}

// GetAddr returns the HTTP listen address.
func (c *Config) GetAddr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return defaultAddr
}

// ResolverConfig converts the resolver section to engine settings.
func (c *Config) ResolverConfig() fandom.Config {
	r := c.Resolver
	return fandom.Config{
		LevenshteinSearch:                r.LevenshteinSearch,
		LevenshteinMinChar:               r.LevenshteinMinChar,
		LevenshteinMaxDiff:               r.LevenshteinMaxDiff,
		LevenshteinSearchOnFindingGroups: r.LevenshteinSearchOnFindingGroups,
		RegexMatchFull:                   r.RegexMatchFull,
		MaxDepth:                         r.MaxDepth,
	}
}
