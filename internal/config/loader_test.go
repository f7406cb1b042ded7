package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snir-david/ESTL/internal/config"
	"github.com/snir-david/ESTL/internal/workload"
	"github.com/snir-david/ESTL/pkg/fixedtree"
)

// isolate keeps the loader away from any real .estl.yaml in the working
// directory or the home directory.
func isolate(t *testing.T) {
	t.Helper()

	dir := t.TempDir()

	t.Chdir(dir)
	t.Setenv("HOME", dir)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "estl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, config.DefaultContainerCapacity, cfg.Container.Capacity)
	assert.Equal(t, config.DefaultContainerStrategy, cfg.Container.Strategy)
	assert.Equal(t, config.DefaultContainerShards, cfg.Container.Shards)
	assert.Equal(t, config.DefaultSoakOps, cfg.Soak.Ops)
	assert.Equal(t, config.DefaultSoakProfile, cfg.Soak.Profile)
	assert.Equal(t, config.DefaultBenchOps, cfg.Bench.Ops)
}

func TestLoadConfigFromFile(t *testing.T) {
	isolate(t)

	path := writeConfig(t, `
log:
  level: debug
  json: true
container:
  capacity: 256
  strategy: avl
  shards: 4
soak:
  ops: 5000
  profile: churn
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 256, cfg.Container.Capacity)
	assert.Equal(t, "avl", cfg.Container.Strategy)
	assert.Equal(t, 4, cfg.Container.Shards)
	assert.Equal(t, 5000, cfg.Soak.Ops)
	assert.Equal(t, "churn", cfg.Soak.Profile)

	// Unset keys keep their defaults.
	assert.Equal(t, config.DefaultSoakKeySpace, cfg.Soak.KeySpace)
	assert.Equal(t, config.DefaultBenchOps, cfg.Bench.Ops)
}

func TestLoadConfigEnvOverridesDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("ESTL_CONTAINER_CAPACITY", "64")
	t.Setenv("ESTL_CONTAINER_STRATEGY", "avl")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Container.Capacity)
	assert.Equal(t, "avl", cfg.Container.Strategy)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "zero capacity",
			content: "container:\n  capacity: 0\n",
			wantErr: config.ErrInvalidCapacity,
		},
		{
			name:    "zero shards",
			content: "container:\n  shards: 0\n",
			wantErr: config.ErrInvalidShards,
		},
		{
			name:    "more shards than slots",
			content: "container:\n  capacity: 4\n  shards: 8\n",
			wantErr: config.ErrShardsExceedCapacity,
		},
		{
			name:    "unknown strategy",
			content: "container:\n  strategy: splay\n",
			wantErr: fixedtree.ErrInvalidStrategy,
		},
		{
			name:    "zero soak ops",
			content: "soak:\n  ops: 0\n",
			wantErr: config.ErrInvalidSoakOps,
		},
		{
			name:    "zero key space",
			content: "soak:\n  key_space: 0\n",
			wantErr: config.ErrInvalidSoakKeySpace,
		},
		{
			name:    "unknown profile",
			content: "soak:\n  profile: zipfian\n",
			wantErr: workload.ErrUnknownProfile,
		},
		{
			name:    "zero bench ops",
			content: "bench:\n  ops: 0\n",
			wantErr: config.ErrInvalidBenchOps,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)

			path := writeConfig(t, tc.content)

			_, err := config.LoadConfig(path)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	isolate(t)

	path := writeConfig(t, "container: [not a map\n")

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}
