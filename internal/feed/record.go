package feed

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FailRecord is one parsed fails-to-deliver observation. Records are
// immutable once constructed: a record only exists when every field
// validated, and ownership transfers entirely to the caller.
type FailRecord struct {
	// Symbol is the equity ticker exactly as it appeared in the source
	// line. Matching is case-insensitive, casing is preserved.
	Symbol string

	// SettlementDate is the exchange-local midnight of the date the fails
	// were reported for.
	SettlementDate time.Time

	// Quantity is the number of shares that failed to deliver.
	Quantity int64

	// Price is the reference price, zero when the source field was absent
	// or the "NA" placeholder.
	Price decimal.Decimal

	// AvailableAt is when the record becomes knowable downstream:
	// settlement date plus one day. This models reporting lag, not
	// observation time.
	AvailableAt time.Time
}

// Equal reports whether two records carry the same field values.
// Price comparison is by decimal value, not representation.
func (r FailRecord) Equal(other FailRecord) bool {
	return r.Symbol == other.Symbol &&
		r.SettlementDate.Equal(other.SettlementDate) &&
		r.Quantity == other.Quantity &&
		r.Price.Equal(other.Price) &&
		r.AvailableAt.Equal(other.AvailableAt)
}

// String implements fmt.Stringer.
func (r FailRecord) String() string {
	return fmt.Sprintf("%s %s quantity=%d price=%s",
		r.Symbol, r.SettlementDate.Format("2006-01-02"), r.Quantity, r.Price.String())
}
