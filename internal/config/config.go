// Package config loads pagekerneld's YAML configuration, applying defaults
// for anything the file leaves out.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finlaydb/pagekernel/internal/catalog"
)

// Config is pagekerneld's top level configuration.
type Config struct {
	// Store configures the container and its page layout.
	Store StoreConfig `yaml:"store"`

	// Housekeeping configures the daemon's low-priority background work.
	Housekeeping HousekeepingConfig `yaml:"housekeeping"`
}

// StoreConfig configures how a container is opened and laid out.
type StoreConfig struct {
	// Path is the backing file. Empty means an in-memory container.
	Path string `yaml:"path"`

	// PageSize is the size in bytes of a page's body, used only when
	// creating a brand new container.
	PageSize uint64 `yaml:"page_size"`

	// PrefixBufferSize is how many bytes of the container's head to cache
	// in memory. Zero disables prefix buffering.
	PrefixBufferSize int `yaml:"prefix_buffer_size"`

	// Checksum and Compression select the algorithm tags written into a
	// brand new filesystem header.
	Checksum         string `yaml:"checksum"`
	Compression      string `yaml:"compression"`
	CompressionLevel string `yaml:"compression_level"`
}

// HousekeepingConfig configures the daemon's periodic low-priority work.
type HousekeepingConfig struct {
	// Cron is a cron schedule: a standard 5-field expression or a
	// descriptor such as "@every 1m". Empty disables housekeeping entirely.
	Cron string `yaml:"cron"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store: StoreConfig{
			PageSize:         4096,
			PrefixBufferSize: 4096,
			Checksum:         "seahash",
			Compression:      "none",
			CompressionLevel: "auto",
		},
		Housekeeping: HousekeepingConfig{
			Cron: "@every 1m",
		},
	}
}

// Load reads and parses a YAML config file at path, filling in defaults
// for anything the file doesn't set.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return cfg, nil
}

// ParseChecksum resolves a config string into a catalog.Checksum tag.
func ParseChecksum(s string) (catalog.Checksum, error) {
	switch s {
	case "", "none":
		return catalog.ChecksumNone, nil
	case "seahash":
		return catalog.ChecksumSeahash, nil
	case "siphash":
		return catalog.ChecksumSiphash, nil
	case "xxh3":
		return catalog.ChecksumXxh3, nil
	default:
		return 0, fmt.Errorf("config: unknown checksum %q", s)
	}
}

// ParseCompression resolves a config string into a catalog.Compression tag.
func ParseCompression(s string) (catalog.Compression, error) {
	switch s {
	case "", "none":
		return catalog.CompressionNone, nil
	case "lz4":
		return catalog.CompressionLz4, nil
	case "brotli":
		return catalog.CompressionBrotli, nil
	case "zstd":
		return catalog.CompressionZstd, nil
	default:
		return 0, fmt.Errorf("config: unknown compression %q", s)
	}
}

// ParseCompressionLevel resolves a config string into a
// catalog.CompressionLevel tag.
func ParseCompressionLevel(s string) (catalog.CompressionLevel, error) {
	switch s {
	case "", "auto":
		return catalog.LevelAuto, nil
	case "fast":
		return catalog.LevelFast, nil
	case "balanced":
		return catalog.LevelBalanced, nil
	case "max":
		return catalog.LevelMax, nil
	default:
		return 0, fmt.Errorf("config: unknown compression level %q", s)
	}
}
