package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	cfg, err := LoadFromReader("yaml", []byte(``))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, cfg.Engine.MaxWorkers, 2)
	assert.LessOrEqual(t, cfg.Engine.MaxWorkers, 8)
	assert.Equal(t, int64(0), cfg.Engine.Seed)
	assert.Equal(t, 10, cfg.Engine.StagnationLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "local", cfg.Storage.Type)
}

func TestLoadFromReader_Override(t *testing.T) {
	content := []byte(`
engine:
  max_workers: 4
  seed: 1234
  stagnation_limit: 25
log:
  level: debug
database:
  enabled: true
  type: postgres
  host: db.internal
  port: 5433
  database: covergen
storage:
  type: cos
  bucket: arrays-1250000000
  region: ap-guangzhou
  secret_id: id
  secret_key: key
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Engine.MaxWorkers)
	assert.Equal(t, int64(1234), cfg.Engine.Seed)
	assert.Equal(t, 25, cfg.Engine.StagnationLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.Equal(t, "arrays-1250000000", cfg.Storage.Bucket)

	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Engine.MaxWorkers = 0 }},
		{"zero stagnation", func(c *Config) { c.Engine.StagnationLimit = 0 }},
		{"sqlite without path", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Type = "sqlite"
			c.Database.Path = ""
		}},
		{"postgres without host", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Type = "postgres"
			c.Database.Host = ""
		}},
		{"unknown database", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Type = "oracle"
		}},
		{"cos without bucket", func(c *Config) {
			c.Storage.Type = "cos"
			c.Storage.Bucket = ""
		}},
		{"unknown storage", func(c *Config) { c.Storage.Type = "s3" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromReader("yaml", []byte(``))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
