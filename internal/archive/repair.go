package archive

import (
	"strings"
)

// Raw SEC export column names. The half-month files are pipe-delimited
// with this header; the security description can itself contain pipes,
// which is what Repair fixes.
const (
	colSettlementDate = "SETTLEMENT DATE"
	colCUSIP          = "CUSIP"
	colSymbol         = "SYMBOL"
	colQuantity       = "QUANTITY (FAILS)"
	colDescription    = "DESCRIPTION"
	colPrice          = "PRICE"
)

// rawColumns is the expected column count after repair.
const rawColumns = 6

// RawRow is one repaired row of a raw SEC export.
type RawRow struct {
	SettlementDate string
	CUSIP          string
	Symbol         string
	Quantity       string
	Description    string
	Price          string
}

// Repair splits a raw SEC export into rows, fixing lines where the pipe
// delimiter leaked into the security description. A row with seven
// fields re-joins the split description; anything longer folds every
// middle field back into it. Rows that cannot be brought to six fields,
// or that carry an empty CUSIP, are dropped.
func Repair(text string) []RawRow {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil
	}

	header := splitPipe(lines[0])
	if len(header) > rawColumns {
		header = header[:rawColumns]
	}
	index := headerIndex(header)

	// All six columns must be present or the file is not a fails export
	for _, name := range []string{colSettlementDate, colCUSIP, colSymbol, colQuantity, colPrice} {
		if _, ok := index[name]; !ok {
			return nil
		}
	}

	var rows []RawRow
	for _, line := range lines[1:] {
		parts := splitPipe(line)
		row, ok := repairRow(parts)
		if !ok {
			continue
		}
		if row[index[colCUSIP]] == "" {
			continue
		}

		rows = append(rows, RawRow{
			SettlementDate: row[index[colSettlementDate]],
			CUSIP:          row[index[colCUSIP]],
			Symbol:         row[index[colSymbol]],
			Quantity:       row[index[colQuantity]],
			Description:    fieldAt(row, index, colDescription),
			Price:          row[index[colPrice]],
		})
	}
	return rows
}

// repairRow normalizes a split line to exactly six fields.
func repairRow(parts []string) ([]string, bool) {
	switch n := len(parts); {
	case n == rawColumns:
		return parts, true
	case n == rawColumns+1:
		// Description split once: re-join its two halves
		joined := parts[4] + "-" + parts[5]
		return []string{parts[0], parts[1], parts[2], parts[3], joined, parts[6]}, true
	case n > rawColumns+1:
		// Description split repeatedly: fold the middle back together
		joined := strings.Join(parts[4:n-1], "-")
		return []string{parts[0], parts[1], parts[2], parts[3], joined, parts[n-1]}, true
	default:
		return nil, false
	}
}

func splitPipe(line string) []string {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToUpper(name)] = i
	}
	return index
}

func fieldAt(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
