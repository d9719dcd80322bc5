// Package config handles avm1.toml decoder configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/chazu/swfaction/avm1"
)

// FileName is the name of the configuration file.
const FileName = "avm1.toml"

// Config represents an avm1.toml configuration.
type Config struct {
	Decoder Decoder `toml:"decoder"`
	Cache   Cache   `toml:"cache"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the avm1.toml file (set at load time).
	Dir string `toml:"-"`
}

// Decoder configures action decoding.
type Decoder struct {
	Version        uint8  `toml:"version"`
	MaxDepth       int    `toml:"max-depth"`
	LegacyEncoding string `toml:"legacy-encoding"`
}

// Cache configures the decode cache.
type Cache struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no avm1.toml is found.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Decoder.Version == 0 {
		c.Decoder.Version = 10
	}
	if c.Decoder.MaxDepth == 0 {
		c.Decoder.MaxDepth = avm1.DefaultMaxDepth
	}
	if c.Decoder.LegacyEncoding == "" {
		c.Decoder.LegacyEncoding = "windows-1252"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(".avm1", "cache.db")
	}
}

// Load parses an avm1.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	c.applyDefaults()
	if c.Decoder.MaxDepth < 0 {
		return nil, fmt.Errorf("%s: max-depth must not be negative", path)
	}
	if _, err := htmlindex.Get(c.Decoder.LegacyEncoding); err != nil {
		return nil, fmt.Errorf("%s: legacy-encoding %q: %w", path, c.Decoder.LegacyEncoding, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find an avm1.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// DecoderOptions converts the [decoder] section to avm1.Options.
func (c *Config) DecoderOptions() (avm1.Options, error) {
	enc, err := htmlindex.Get(c.Decoder.LegacyEncoding)
	if err != nil {
		return avm1.Options{}, fmt.Errorf("legacy-encoding %q: %w", c.Decoder.LegacyEncoding, err)
	}
	return avm1.Options{
		Version:        c.Decoder.Version,
		MaxDepth:       c.Decoder.MaxDepth,
		LegacyEncoding: enc,
	}, nil
}

// CachePath returns the cache database path. Relative paths are resolved
// against the directory the configuration was loaded from.
func (c *Config) CachePath() string {
	if c.Dir == "" || filepath.IsAbs(c.Cache.Path) || c.Cache.Path == ":memory:" {
		return c.Cache.Path
	}
	return filepath.Join(c.Dir, c.Cache.Path)
}
