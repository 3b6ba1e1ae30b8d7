package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "corpus.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, 150, cfg.Limits.GraphNodes)
	assert.Equal(t, 50, cfg.Limits.PageSize)
}

func TestLoad_PartialFileFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailcorpus.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
database {
  path = "/data/enron.db"
}

cache {
  ttl_seconds = 60
}
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/enron.db", cfg.Database.Path)
	assert.Equal(t, time.Minute, cfg.Cache.TTL())
	assert.Equal(t, 4096, cfg.Cache.MaxEntries, "unset cache attrs fall back")
	assert.Equal(t, 1000, cfg.Limits.TreeMessages, "absent limits block falls back")
}

func TestLoad_InvalidHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailcorpus.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`cache { ttl_seconds = `), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
