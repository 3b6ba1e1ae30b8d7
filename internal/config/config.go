// Package config loads the mailcorpus HCL configuration file. Every block
// and attribute is optional; absent values fall back to defaults that suit
// the full Enron-scale corpus.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the root of the mailcorpus.hcl file.
type Config struct {
	Database *DatabaseConfig `hcl:"database,block"`
	Cache    *CacheConfig    `hcl:"cache,block"`
	Limits   *LimitsConfig   `hcl:"limits,block"`
}

type DatabaseConfig struct {
	Path string `hcl:"path,optional"`
}

type CacheConfig struct {
	// Path selects the persistent SQLite cache; empty means in-memory.
	Path       string `hcl:"path,optional"`
	TTLSeconds int    `hcl:"ttl_seconds,optional"`
	MaxEntries int    `hcl:"max_entries,optional"`
}

type LimitsConfig struct {
	GraphNodes   int `hcl:"graph_nodes,optional"`
	TreeMessages int `hcl:"tree_messages,optional"`
	PageSize     int `hcl:"page_size,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: &DatabaseConfig{Path: "corpus.db"},
		Cache:    &CacheConfig{TTLSeconds: 300, MaxEntries: 4096},
		Limits:   &LimitsConfig{GraphNodes: 150, TreeMessages: 1000, PageSize: 50},
	}
}

// Load reads an HCL config file and fills unset values with defaults.
// A missing file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	cfg := &Config{}
	if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	def := Default()
	if cfg.Database == nil {
		cfg.Database = def.Database
	} else if cfg.Database.Path == "" {
		cfg.Database.Path = def.Database.Path
	}
	if cfg.Cache == nil {
		cfg.Cache = def.Cache
	} else {
		if cfg.Cache.TTLSeconds <= 0 {
			cfg.Cache.TTLSeconds = def.Cache.TTLSeconds
		}
		if cfg.Cache.MaxEntries <= 0 {
			cfg.Cache.MaxEntries = def.Cache.MaxEntries
		}
	}
	if cfg.Limits == nil {
		cfg.Limits = def.Limits
	} else {
		if cfg.Limits.GraphNodes <= 0 {
			cfg.Limits.GraphNodes = def.Limits.GraphNodes
		}
		if cfg.Limits.TreeMessages <= 0 {
			cfg.Limits.TreeMessages = def.Limits.TreeMessages
		}
		if cfg.Limits.PageSize <= 0 {
			cfg.Limits.PageSize = def.Limits.PageSize
		}
	}
	return cfg, nil
}

// TTL returns the cache TTL as a duration.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
