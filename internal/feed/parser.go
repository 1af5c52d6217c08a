package feed

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayout is the source date format, yyyyMMdd.
const dateLayout = "20060102"

// delimiters tried in order; the first one found in a line wins. This lets
// one parser tolerate the SEC's pipe-delimited raw exports alongside the
// tab and comma variants seen in repackaged data.
var delimiters = [...]string{"|", "\t", ","}

// RouteMode selects how a subscription maps onto dated archives.
type RouteMode int

const (
	// RouteExactDate: the archive for day D holds exactly day D's
	// observations, lookup is by literal date and no symbol filter
	// applies at parse time.
	RouteExactDate RouteMode = iota

	// RouteContent: one dated archive serves many tickers; the
	// subscription label is decorative and the per-line symbol filter
	// does the narrowing.
	RouteContent
)

// Policy is the per-line acceptance policy. The strict and lenient
// variants differ only in these knobs, not in code paths.
type Policy struct {
	// MinQuantity is the rejection floor for parsed quantities:
	// 0 accepts zero-share rows, 1 requires a positive fail count.
	MinQuantity int64

	// MinFields is the minimum field count per line. The strict
	// single-record shape requires 4, the collection shape accepts 2
	// with missing trailing fields defaulting to zero.
	MinFields int

	// Symbol, when non-empty, restricts parsing to lines whose ticker
	// matches case-insensitively. Used with RouteContent only.
	Symbol string
}

// ForMode applies the routing mode to the policy. Under exact-date
// routing lookup is by literal date and the symbol filter never applies
// at parse time; under content routing it narrows as configured.
func (p Policy) ForMode(mode RouteMode) Policy {
	if mode == RouteExactDate {
		p.Symbol = ""
	}
	return p
}

// StrictPolicy is the single-record shape: four fields, positive
// quantity, optional symbol filter.
func StrictPolicy(symbol string) Policy {
	return Policy{MinQuantity: 1, MinFields: 4, Symbol: symbol}
}

// LenientPolicy is the collection shape: every ticker wanted, zero
// quantities kept, short lines tolerated.
func LenientPolicy() Policy {
	return Policy{MinQuantity: 0, MinFields: 2}
}

// Parser turns raw source lines into FailRecords. It holds only
// read-only state and is safe for concurrent use.
type Parser struct {
	policy Policy
	loc    *time.Location
}

// NewParser creates a parser for the given policy. The exchange location
// is loaded once here and shared read-only afterwards.
func NewParser(policy Policy) (*Parser, error) {
	loc, err := time.LoadLocation(ExchangeTimeZone)
	if err != nil {
		return nil, err
	}
	if policy.MinFields < 2 {
		policy.MinFields = 2
	}
	return &Parser{policy: policy, loc: loc}, nil
}

// Policy returns the parser's acceptance policy.
func (p *Parser) Policy() Policy {
	return p.policy
}

// ParseLine parses one raw line into a record. The second return value is
// false when the line is rejected: empty input, header rows, malformed
// fields, filtered symbols. Rejection is silent by design, one corrupt
// row must not abort a day's ingestion.
func (p *Parser) ParseLine(line string) (FailRecord, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return FailRecord{}, false
	}

	// Cheap pre-filter: data lines start with a yyyyMMdd date, so a
	// non-digit first byte means a header or comment.
	if trimmed[0] < '0' || trimmed[0] > '9' {
		return FailRecord{}, false
	}

	fields := splitFields(trimmed)
	if len(fields) < p.policy.MinFields {
		return FailRecord{}, false
	}

	settlement, err := time.ParseInLocation(dateLayout, fields[0], p.loc)
	if err != nil {
		return FailRecord{}, false
	}

	symbol := fields[1]
	if symbol == "" {
		return FailRecord{}, false
	}
	if p.policy.Symbol != "" && !strings.EqualFold(p.policy.Symbol, symbol) {
		return FailRecord{}, false
	}

	// Quantity and price distinguish absent (default to zero) from
	// malformed (reject the whole line).
	var quantity int64
	if len(fields) > 2 && fields[2] != "" {
		quantity, err = strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return FailRecord{}, false
		}
	}
	if quantity < p.policy.MinQuantity {
		return FailRecord{}, false
	}

	price := decimal.Zero
	if len(fields) > 3 && fields[3] != "" && !strings.EqualFold(fields[3], "NA") {
		price, err = decimal.NewFromString(fields[3])
		if err != nil || price.IsNegative() {
			return FailRecord{}, false
		}
	}

	return FailRecord{
		Symbol:         symbol,
		SettlementDate: settlement,
		Quantity:       quantity,
		Price:          price,
		AvailableAt:    settlement.AddDate(0, 0, 1),
	}, true
}

// splitFields splits a line on the first delimiter found and trims each
// field.
func splitFields(line string) []string {
	delim := delimiters[len(delimiters)-1]
	for _, d := range delimiters {
		if strings.Contains(line, d) {
			delim = d
			break
		}
	}

	fields := strings.Split(line, delim)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
