package feed

import "time"

// Collection is a day's worth of source lines folded through the lenient
// parser. Iteration is lazy and restartable: every pass re-parses from
// the stored lines, rejects are discarded, input order is preserved, and
// no symbol filter applies (collection mode keeps every ticker present).
type Collection struct {
	date   time.Time
	lines  []string
	parser *Parser
}

// Fold builds a collection over one day's lines.
func Fold(date time.Time, lines []string, parser *Parser) *Collection {
	return &Collection{date: date, lines: lines, parser: parser}
}

// Date returns the archive day this collection was folded for.
func (c *Collection) Date() time.Time {
	return c.date
}

// Each invokes fn for every valid record in input order, re-parsing from
// the stored lines. Iteration stops early when fn returns false.
func (c *Collection) Each(fn func(FailRecord) bool) {
	for _, line := range c.lines {
		record, ok := c.parser.ParseLine(line)
		if !ok {
			continue
		}
		if !fn(record) {
			return
		}
	}
}

// Records materializes the collection into a slice.
func (c *Collection) Records() []FailRecord {
	var records []FailRecord
	c.Each(func(r FailRecord) bool {
		records = append(records, r)
		return true
	})
	return records
}
