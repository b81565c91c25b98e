package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Port, cfg.Port)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jhp.yaml")
	yaml := "host: 0.0.0.0\nport: 9090\ndocument_root: /srv/docs\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, uint16(9090), cfg.Port)
	assert.Equal(t, "/srv/docs", cfg.DocumentRoot)
	// Fields not set in the file keep their default.
	assert.Equal(t, DefaultConfig().IndexFile, cfg.IndexFile)
}

func TestEnvOverridesTakePriority(t *testing.T) {
	t.Setenv("JHP_HOST", "10.0.0.1")
	t.Setenv("JHP_PORT", "4444")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", cfg.Host)
	assert.Equal(t, uint16(4444), cfg.Port)
}

func TestAddrAndIndexPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host, cfg.Port = "example.invalid", 1234
	assert.Equal(t, "example.invalid:1234", cfg.Addr())
	assert.Equal(t, filepath.Join(cfg.DocumentRoot, cfg.IndexFile), cfg.IndexPath())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*EngineConfig){
		"zero executors":     func(c *EngineConfig) { c.Executors = 0 },
		"zero mailbox depth": func(c *EngineConfig) { c.MailboxDepth = 0 },
		"empty docroot":      func(c *EngineConfig) { c.DocumentRoot = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
