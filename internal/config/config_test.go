package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/finlaydb/pagekernel/internal/catalog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Store.PageSize != 4096 {
		t.Fatalf("PageSize = %d, want 4096", cfg.Store.PageSize)
	}

	if cfg.Housekeeping.Cron == "" {
		t.Fatalf("Cron default should not be empty")
	}
}

func TestLoadEmptyFileStillProducesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}

	if cfg.Store.PageSize != Default().Store.PageSize {
		t.Fatalf("PageSize = %d, want default %d", cfg.Store.PageSize, Default().Store.PageSize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	contents := []byte(`
store:
  path: /tmp/pagekernel.db
  page_size: 8192
  checksum: xxh3
  compression: zstd
  compression_level: max
housekeeping:
  cron: "0 */6 * * *"
`)

	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}

	if cfg.Store.PageSize != 8192 {
		t.Fatalf("PageSize = %d, want 8192", cfg.Store.PageSize)
	}

	if cfg.Housekeeping.Cron != "0 */6 * * *" {
		t.Fatalf("Cron = %q, want %q", cfg.Housekeeping.Cron, "0 */6 * * *")
	}
}

func TestParseChecksum(t *testing.T) {
	cases := map[string]catalog.Checksum{
		"":        catalog.ChecksumNone,
		"none":    catalog.ChecksumNone,
		"seahash": catalog.ChecksumSeahash,
		"siphash": catalog.ChecksumSiphash,
		"xxh3":    catalog.ChecksumXxh3,
	}

	for in, want := range cases {
		got, err := ParseChecksum(in)
		if err != nil {
			t.Fatalf("ParseChecksum(%q): %s", in, err)
		}
		if got != want {
			t.Fatalf("ParseChecksum(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseChecksum("bogus"); err == nil {
		t.Fatalf("ParseChecksum(bogus) succeeded, want error")
	}
}

func TestParseCompressionAndLevel(t *testing.T) {
	if _, err := ParseCompression("bogus"); err == nil {
		t.Fatalf("ParseCompression(bogus) succeeded, want error")
	}

	if _, err := ParseCompressionLevel("bogus"); err == nil {
		t.Fatalf("ParseCompressionLevel(bogus) succeeded, want error")
	}

	level, err := ParseCompressionLevel("max")
	if err != nil {
		t.Fatalf("ParseCompressionLevel(max): %s", err)
	}
	if level != catalog.LevelMax {
		t.Fatalf("ParseCompressionLevel(max) = %v, want LevelMax", level)
	}
}
