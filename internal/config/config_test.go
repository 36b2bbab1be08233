package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "full window is valid",
			mutate: func(c *Config) {
				c.StartTime = start
				c.EndTime = end
			},
		},
		{
			name: "start without end",
			mutate: func(c *Config) {
				c.StartTime = start
			},
			wantErr: "must be set together",
		},
		{
			name: "end without start",
			mutate: func(c *Config) {
				c.EndTime = end
			},
			wantErr: "must be set together",
		},
		{
			name: "inverted window",
			mutate: func(c *Config) {
				c.StartTime = end
				c.EndTime = start
			},
			wantErr: "EndTime must be after StartTime",
		},
		{
			name: "mining without repo",
			mutate: func(c *Config) {
				c.RegexRepo = ""
			},
			wantErr: "RegexRepo must not be empty",
		},
		{
			name: "mining without branch",
			mutate: func(c *Config) {
				c.RegexBranch = ""
			},
			wantErr: "RegexBranch must not be empty",
		},
		{
			name: "skipped mining needs no repo",
			mutate: func(c *Config) {
				c.SkipRegexBuild = true
				c.RegexRepo = ""
				c.RegexBranch = ""
			},
		},
		{
			name: "backend query without address",
			mutate: func(c *Config) {
				c.Address = ""
			},
			wantErr: "Address must not be empty",
		},
		{
			name: "file mode needs no address",
			mutate: func(c *Config) {
				c.Address = ""
				c.File = "node.log"
			},
		},
		{
			name: "zero batch",
			mutate: func(c *Config) {
				c.Batch = 0
			},
			wantErr: "Batch must be at least 1",
		},
		{
			name: "zero limit",
			mutate: func(c *Config) {
				c.Limit = 0
			},
			wantErr: "Limit must be at least 1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)

			var configErr *ConfigError
			assert.ErrorAs(t, err, &configErr)
		})
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.Equal(t, DefaultChain, cfg.Chain)
	assert.Equal(t, DefaultBatch, cfg.Batch)
	assert.Equal(t, DefaultLimit, cfg.Limit)
	assert.Equal(t, DefaultRegexRepo, cfg.RegexRepo)
	assert.Equal(t, DefaultRegexBranch, cfg.RegexBranch)
	assert.True(t, cfg.ExcludeCommonErrors)
}

func TestLoadFile(t *testing.T) {
	content := `
address: http://loki.example.com
chain: kusama
batch: 100
excludeCommonErrors: false
`
	path := filepath.Join(t.TempDir(), "triage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://loki.example.com", cfg.Address)
	assert.Equal(t, "kusama", cfg.Chain)
	assert.Equal(t, 100, cfg.Batch)
	assert.False(t, cfg.ExcludeCommonErrors)

	// Keys absent from the file keep their defaults
	assert.Equal(t, DefaultLimit, cfg.Limit)
	assert.Equal(t, DefaultRegexBranch, cfg.RegexBranch)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: [unclosed"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
