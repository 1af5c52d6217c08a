package feed

// ExchangeTimeZone is the reference timezone for the feed: settlement
// dates are US exchange-local calendar days.
const ExchangeTimeZone = "America/New_York"

// Resolution is a sampling resolution supported by the feed.
type Resolution string

const (
	ResolutionDaily Resolution = "daily"
)

// Metadata is the static feed contract a host ingestion pipeline
// consumes. These are fixed constants, not computed state.
type Metadata struct {
	// DefaultResolution and SupportedResolutions: the SEC publishes
	// fails data per settlement day, so daily is the only resolution.
	DefaultResolution    Resolution   `json:"default_resolution"`
	SupportedResolutions []Resolution `json:"supported_resolutions"`

	// Sparse suppresses missing-file errors upstream: the feed only has
	// archives for days with published data.
	Sparse bool `json:"sparse"`

	// TimeZone is the feed's reference timezone.
	TimeZone string `json:"time_zone"`

	// RequiresMapping: tickers are raw symbols and need downstream
	// corporate-action resolution to a permanent identity.
	RequiresMapping bool `json:"requires_mapping"`
}

// DefaultMetadata returns the feed's static metadata.
func DefaultMetadata() Metadata {
	return Metadata{
		DefaultResolution:    ResolutionDaily,
		SupportedResolutions: []Resolution{ResolutionDaily},
		Sparse:               true,
		TimeZone:             ExchangeTimeZone,
		RequiresMapping:      true,
	}
}
