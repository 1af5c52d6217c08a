package feedcfg

import (
	"fmt"

	"github.com/bondquant/ftdfeed/internal/feed"
)

// Config is the full feed policy configuration loaded from YAML.
type Config struct {
	Meta    Meta    `yaml:"meta" json:"meta"`
	Parsing Parsing `yaml:"parsing" json:"parsing"`
	Routing Routing `yaml:"routing" json:"routing"`
}

// Meta identifies the configuration.
type Meta struct {
	FeedID  string `yaml:"feed_id" json:"feed_id"`
	Version string `yaml:"version" json:"version"`
}

// Parsing controls line acceptance.
type Parsing struct {
	MinQuantity int64  `yaml:"min_quantity" json:"min_quantity"`
	MinFields   int    `yaml:"min_fields" json:"min_fields"`
	Symbol      string `yaml:"symbol" json:"symbol"`
}

// Routing controls how request timestamps map to archive paths.
type Routing struct {
	BaseDir string `yaml:"base_dir" json:"base_dir"`
	Mode    string `yaml:"mode" json:"mode"` // "exact_date" or "content"
}

// Policy converts the parsing section into a parser policy, with the
// routing mode applied: exact-date routing drops the symbol filter.
func (c *Config) Policy() feed.Policy {
	policy := feed.Policy{
		MinQuantity: c.Parsing.MinQuantity,
		MinFields:   c.Parsing.MinFields,
		Symbol:      c.Parsing.Symbol,
	}

	mode, err := c.RouteMode()
	if err != nil {
		// Validate rejects unknown modes before Policy is reachable.
		return policy
	}
	return policy.ForMode(mode)
}

// RouteMode converts the routing mode string into its enum form.
func (c *Config) RouteMode() (feed.RouteMode, error) {
	switch c.Routing.Mode {
	case "exact_date":
		return feed.RouteExactDate, nil
	case "content":
		return feed.RouteContent, nil
	default:
		return feed.RouteExactDate, fmt.Errorf("unknown routing mode %q", c.Routing.Mode)
	}
}
