package feedcfg

import "fmt"

// ValidationError reports a constraint violation in the policy file.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints.
func Validate(cfg *Config) error {
	if cfg.Meta.FeedID == "" {
		return ValidationError{"meta.feed_id", "required"}
	}

	if cfg.Parsing.MinQuantity != 0 && cfg.Parsing.MinQuantity != 1 {
		return ValidationError{"parsing.min_quantity", "must be 0 or 1"}
	}
	if cfg.Parsing.MinFields < 2 || cfg.Parsing.MinFields > 4 {
		return ValidationError{"parsing.min_fields", "must be in [2, 4]"}
	}

	if cfg.Routing.BaseDir == "" {
		return ValidationError{"routing.base_dir", "required"}
	}
	switch cfg.Routing.Mode {
	case "exact_date", "content":
	default:
		return ValidationError{"routing.mode", `must be "exact_date" or "content"`}
	}

	return nil
}
