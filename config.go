package eventgraph

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Headless-clause policies: what to do when a clause-end marker arrives
// without a recorded clause-head (degenerate segmentation).
const (
	HeadlessSkip = "skip" // drop the segment silently
	HeadlessWarn = "warn" // drop the segment and log a warning
)

// Argument orderings for same-case fillers.
const (
	ArgumentOrderPosition  = "position"  // by appearance (sentence, then tag id)
	ArgumentOrderInsertion = "insertion" // parser emission order
)

// Config holds all configuration for building and storing event graphs.
type Config struct {
	// HeadlessClausePolicy controls handling of a clause-end marker with no
	// preceding clause-head: "skip" (default) or "warn".
	HeadlessClausePolicy string `json:"headless_clause_policy" yaml:"headless_clause_policy"`

	// ArgumentOrder controls the ordering of same-case argument fillers:
	// "position" (default) or "insertion".
	ArgumentOrder string `json:"argument_order" yaml:"argument_order"`

	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.evg/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath is not
	// explicitly set. Options: "home" (default) uses ~/.evg/, "local" uses
	// the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`
}

// DefaultConfig returns a Config with the default policies.
func DefaultConfig() Config {
	return Config{
		HeadlessClausePolicy: HeadlessSkip,
		ArgumentOrder:        ArgumentOrderPosition,
		DBName:               "evg",
		StorageDir:           "home",
	}
}

// LoadConfig reads a YAML config file, applying defaults for unset fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.HeadlessClausePolicy {
	case "", HeadlessSkip, HeadlessWarn:
	default:
		return fmt.Errorf("unknown headless_clause_policy %q", c.HeadlessClausePolicy)
	}
	switch c.ArgumentOrder {
	case "", ArgumentOrderPosition, ArgumentOrderInsertion:
	default:
		return fmt.Errorf("unknown argument_order %q", c.ArgumentOrder)
	}
	return nil
}

// DBFilePath computes the final database path from config fields.
func (c *Config) DBFilePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "evg"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		return filepath.Join(home, ".evg", name+".db")
	}
}
