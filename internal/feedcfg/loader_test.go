package feedcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondquant/ftdfeed/internal/feed"
)

const validYAML = `
meta:
  feed_id: sec-failstodeliver
  version: "1.0"
parsing:
  min_quantity: 1
  min_fields: 4
  symbol: ACNB
routing:
  base_dir: /data
  mode: exact_date
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "sec-failstodeliver", cfg.Meta.FeedID)
	assert.Equal(t, int64(1), cfg.Parsing.MinQuantity)
	assert.Equal(t, "/data", cfg.Routing.BaseDir)

	// Exact-date routing is by literal date: the configured symbol
	// filter must not survive into the parser policy.
	policy := cfg.Policy()
	assert.Equal(t, feed.Policy{MinQuantity: 1, MinFields: 4}, policy)

	mode, err := cfg.RouteMode()
	require.NoError(t, err)
	assert.Equal(t, feed.RouteExactDate, mode)
}

func TestLoad_ContentModeKeepsSymbolFilter(t *testing.T) {
	yaml := strings.Replace(validYAML, "mode: exact_date", "mode: content", 1)

	cfg, err := Load(writeTemp(t, yaml))
	require.NoError(t, err)

	mode, err := cfg.RouteMode()
	require.NoError(t, err)
	assert.Equal(t, feed.RouteContent, mode)
	assert.Equal(t, "ACNB", cfg.Policy().Symbol)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(writeTemp(t, validYAML+"\nextra_section:\n  foo: 1\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Meta:    Meta{FeedID: "sec-failstodeliver", Version: "1.0"},
			Parsing: Parsing{MinQuantity: 0, MinFields: 2},
			Routing: Routing{BaseDir: "/data", Mode: "content"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid lenient config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing feed id",
			mutate:  func(c *Config) { c.Meta.FeedID = "" },
			wantErr: "meta.feed_id",
		},
		{
			name:    "min quantity out of range",
			mutate:  func(c *Config) { c.Parsing.MinQuantity = 5 },
			wantErr: "parsing.min_quantity",
		},
		{
			name:    "min fields too small",
			mutate:  func(c *Config) { c.Parsing.MinFields = 1 },
			wantErr: "parsing.min_fields",
		},
		{
			name:    "missing base dir",
			mutate:  func(c *Config) { c.Routing.BaseDir = "" },
			wantErr: "routing.base_dir",
		},
		{
			name:    "bad route mode",
			mutate:  func(c *Config) { c.Routing.Mode = "fuzzy" },
			wantErr: "routing.mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRouteMode_Unknown(t *testing.T) {
	cfg := &Config{Routing: Routing{Mode: "fuzzy"}}
	_, err := cfg.RouteMode()
	assert.Error(t, err)
}
