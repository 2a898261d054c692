package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormattersPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Success", Success, "✓"},
		{"Warn", Warn, "⚠"},
		{"Err", Err, "✗"},
		{"Info", Info, "ℹ"},
		{"Hint", Hint, "→"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn("careful now")
			assert.Contains(t, out, tt.prefix)
			assert.Contains(t, out, "careful now")
		})
	}
}

func TestFormattersKeepInput(t *testing.T) {
	formatters := map[string]func(string) string{
		"Addr":      Addr,
		"Val":       Val,
		"Meta":      Meta,
		"ChainName": ChainName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("bsc-testnet"), "bsc-testnet")
		})
	}
}

func TestInfoDifferentFromHint(t *testing.T) {
	assert.NotEqual(t, Info("message"), Hint("message"))
}

func TestYesNo(t *testing.T) {
	assert.Contains(t, YesNo(true), "yes")
	assert.Contains(t, YesNo(false), "no")
	assert.NotContains(t, YesNo(true), "no")
}

func TestTruncateAddr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"0x1234", "0x1234"},
		{"0x12345678", "0x12345678"},
		{"0x5FbDB2315678afecb367f032d93F642f64180aa3", "0x5FbD…0aa3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateAddr(tt.in), tt.in)
	}
}

func TestBannerNamesTool(t *testing.T) {
	assert.Contains(t, Banner(), "token presale client")
}
