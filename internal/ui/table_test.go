package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	out := KeyValueBlock("Presale", [][2]string{
		{"Softcap", "2.0000 ETH"},
		{"Hardcap", "10.0000 ETH"},
	})
	assert.Contains(t, out, "Presale")
	assert.Contains(t, out, "Softcap:")
	assert.Contains(t, out, "2.0000 ETH")
	assert.Contains(t, out, "10.0000 ETH")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	out := KeyValueBlock("", [][2]string{
		{"First", "AAA"},
		{"Second", "BBB"},
		{"Third", "CCC"},
	})
	a, b, c := strings.Index(out, "AAA"), strings.Index(out, "BBB"), strings.Index(out, "CCC")
	require.Greater(t, a, -1)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	out := KeyValueBlock("", [][2]string{{"Key", "Val"}})
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╰")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestNewTableCreatesEmptyTable(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Block", Width: 10}, {Title: "Event", Width: 20}})
	assert.Len(t, tbl.Columns, 2)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.SelIdx)
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Event", Width: 16},
		{Title: "Args", Width: 24},
	})
	tbl.AddRow(Row{"TokensPurchased", "amount=1"})
	tbl.AddRow(Row{"Paused"})

	out := tbl.Render()
	assert.Contains(t, out, "Event")
	assert.Contains(t, out, "Args")
	assert.Contains(t, out, "────────────────")
	assert.Less(t, strings.Index(out, "TokensPurchased"), strings.Index(out, "Paused"))
}

func TestTableRenderClipsLongCells(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Hash", Width: 8}})
	tbl.AddRow(Row{"0xabcdef0123456789"})

	out := tbl.Render()
	assert.Contains(t, out, "0xabcde…")
	assert.NotContains(t, out, "0xabcdef0123456789")
}

func TestTableRenderSelectedRow(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}})
	tbl.AddRow(Row{"row0"})
	tbl.AddRow(Row{"row1"})
	tbl.SelIdx = 1

	out := tbl.Render()
	assert.Contains(t, out, "row0")
	assert.Contains(t, out, "row1")
}

func TestPadR(t *testing.T) {
	assert.Equal(t, "ab   ", padR("ab", 5))
	assert.Equal(t, "abcdef", padR("abcdef", 3))
}

func TestTrimErr(t *testing.T) {
	assert.Equal(t, "execution reverted", trimErr("  execution reverted\nstack: ...", 40))
	assert.Equal(t, "abcd…", trimErr("abcdefgh", 5))
	assert.Equal(t, "", trimErr("", 5))
}

// ---------------------------------------------------------------------------
// ProgressBar
// ---------------------------------------------------------------------------

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		filled  int
		label   string
	}{
		{"empty", 0, 0, "  0.0%"},
		{"half", 50, 5, " 50.0%"},
		{"full", 100, 10, "100.0%"},
		{"clamped high", 250, 10, "100.0%"},
		{"clamped low", -3, 0, "  0.0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ProgressBar(tt.percent, 10)
			assert.Equal(t, tt.filled, strings.Count(out, "█"))
			assert.Equal(t, 10-tt.filled, strings.Count(out, "░"))
			assert.Contains(t, out, tt.label)
		})
	}
}
