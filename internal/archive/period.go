package archive

import "time"

// EarliestSettlement is the cutoff below which rows are discarded; the
// SEC series is only consistent from July 2009.
var EarliestSettlement = time.Date(2009, 7, 1, 0, 0, 0, 0, time.UTC)

// ReleasePeriod maps a settlement date to the date its half-month file
// is released under: days 1-15 release at month end, days 16 and later
// release on the 15th of the next month.
func ReleasePeriod(settlement time.Time) time.Time {
	y, m, d := settlement.Date()
	if d <= 15 {
		// Last day of the settlement month
		return time.Date(y, m+1, 0, 0, 0, 0, 0, settlement.Location())
	}
	return time.Date(y, m+1, 15, 0, 0, 0, 0, settlement.Location())
}
