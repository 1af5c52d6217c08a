package feed

import (
	"fmt"
	"path"
	"time"
)

// Storage layout constants under the data root.
const (
	CategoryDir = "alternative"
	ProviderDir = "sec"
	FeedDir     = "failstodeliver"

	archiveExt = "zip"
	entryExt   = "csv"
)

// Router computes the storage key for a requested date. Routing is a pure
// function of the date: it never fails, and missing files are the
// retrieval layer's concern (the feed is declared sparse for that reason).
type Router struct {
	base string
	loc  *time.Location
}

// NewRouter creates a router rooted at base.
func NewRouter(base string) (*Router, error) {
	loc, err := time.LoadLocation(ExchangeTimeZone)
	if err != nil {
		return nil, err
	}
	return &Router{base: base, loc: loc}, nil
}

// Route returns the archive key for the exchange-local calendar day of t,
// in the form <base>/alternative/sec/failstodeliver/YYYYMMDD.zip#YYYYMMDD.csv.
// Instants on the same exchange-local day always route identically.
func (r *Router) Route(t time.Time) string {
	day := t.In(r.loc).Format(dateLayout)
	return fmt.Sprintf("%s#%s.%s", r.ArchivePath(day), day, entryExt)
}

// ArchivePath returns the archive file path for a yyyyMMdd day label,
// without the entry fragment.
func (r *Router) ArchivePath(day string) string {
	return path.Join(r.base, CategoryDir, ProviderDir, FeedDir, day+"."+archiveExt)
}

// Day returns the exchange-local yyyyMMdd label for t.
func (r *Router) Day(t time.Time) string {
	return t.In(r.loc).Format(dateLayout)
}
