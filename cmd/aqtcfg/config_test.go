package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "log_level: debug\nformat: yaml\nfwd_bits: 8\nuse_fwd_quant: false\nserver_address: 0.0.0.0:9000\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "yaml", cfg.Format)
	require.NotNil(t, cfg.FwdBits)
	assert.Equal(t, 8, *cfg.FwdBits)
	assert.Nil(t, cfg.BwdBits)
	require.NotNil(t, cfg.UseFwdQuant)
	assert.False(t, *cfg.UseFwdQuant)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddress)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lhs_bitz: 8\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestParseBits(t *testing.T) {
	for _, s := range []string{"", "none", " NONE "} {
		got, err := parseBits("x", s)
		require.NoError(t, err)
		assert.Nil(t, got, s)
	}
	got, err := parseBits("x", "8")
	require.NoError(t, err)
	assert.Equal(t, 8, *got)

	_, err = parseBits("x", "8.5")
	assert.ErrorContains(t, err, "--x")
}
