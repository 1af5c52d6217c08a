package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawHeader = "SETTLEMENT DATE|CUSIP|SYMBOL|QUANTITY (FAILS)|DESCRIPTION|PRICE"

func TestRepair_CleanRows(t *testing.T) {
	text := rawHeader + "\n" +
		"20101001|036410106|ACNB|500|ACNB CORP|12.50\n" +
		"20101001|023660104|AMER|250|AMERON INTL|41.10\n"

	rows := Repair(text)
	require.Len(t, rows, 2)

	assert.Equal(t, "20101001", rows[0].SettlementDate)
	assert.Equal(t, "036410106", rows[0].CUSIP)
	assert.Equal(t, "ACNB", rows[0].Symbol)
	assert.Equal(t, "500", rows[0].Quantity)
	assert.Equal(t, "12.50", rows[0].Price)
}

func TestRepair_DelimiterInDescription(t *testing.T) {
	tests := []struct {
		name         string
		line            string
		wantDescription string
	}{
		{
			"single leak",
			"20101001|036410106|ACNB|500|ACNB CORP |CL A|12.50",
			"ACNB CORP-CL A",
		},
		{
			"double leak",
			"20101001|036410106|ACNB|500|ACNB|CORP|CL A|12.50",
			"ACNB-CORP-CL A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Repair(rawHeader + "\n" + tt.line + "\n")
			require.Len(t, rows, 1)
			assert.Equal(t, tt.wantDescription, rows[0].Description)
			assert.Equal(t, "12.50", rows[0].Price)
		})
	}
}

func TestRepair_DropsBadRows(t *testing.T) {
	text := rawHeader + "\n" +
		"20101001|036410106|ACNB|500|ACNB CORP|12.50\n" +
		"20101001||NOCUSIP|500|SOMETHING|1.00\n" + // empty CUSIP
		"short|row\n" +
		"\n"

	rows := Repair(text)
	require.Len(t, rows, 1)
	assert.Equal(t, "ACNB", rows[0].Symbol)
}

func TestRepair_MissingHeader(t *testing.T) {
	assert.Nil(t, Repair("NOT|A|FAILS|FILE\n1|2|3|4\n"))
	assert.Nil(t, Repair(""))
}

func TestIsEquityCUSIP(t *testing.T) {
	tests := []struct {
		cusip string
		want  bool
	}{
		{"036410106", true},   // leading 0, positions 7-8 == 10
		{"03641010", true},    // exactly 8 chars
		{"136410106", false},  // wrong prefix
		{"036410206", false},  // not an equity issue number
		{"0364101", false},    // too short
		{" 036410106 ", true}, // trimmed
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEquityCUSIP(tt.cusip), "cusip %q", tt.cusip)
	}
}
