package codec_test

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/sovieth88-oss/presalectl/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wei(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad test integer " + s)
	}
	return n
}

// ---------------------------------------------------------------------------
// FormatEther / FormatUnits
// ---------------------------------------------------------------------------

func TestFormatEther(t *testing.T) {
	tests := []struct {
		name string
		in   *big.Int
		want string
	}{
		{"zero", big.NewInt(0), "0.0000"},
		{"nil", nil, "0.0000"},
		{"one ether", wei("1000000000000000000"), "1.0000"},
		{"one and a half", wei("1500000000000000000"), "1.5000"},
		{"truncates not rounds", wei("1999990000000000000"), "1.9999"},
		{"dust below display", wei("99999999999999"), "0.0000"},
		{"one wei", big.NewInt(1), "0.0000"},
		{"above 2^53", wei("123456789012345678901234567"), "123456789.0123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codec.FormatEther(tt.in))
		})
	}
}

func TestFormatUnitsPlaces(t *testing.T) {
	v := wei("1234567890000000000")
	assert.Equal(t, "1", codec.FormatUnits(v, 0))
	assert.Equal(t, "1.23", codec.FormatUnits(v, 2))
	assert.Equal(t, "1.234567890000000000", codec.FormatUnits(v, 18))
}

func TestFormatExactTrimsZeros(t *testing.T) {
	assert.Equal(t, "1.5", codec.FormatExact(wei("1500000000000000000")))
	assert.Equal(t, "0.00001", codec.FormatExact(wei("10000000000000")))
	assert.Equal(t, "0", codec.FormatExact(nil))
}

// ---------------------------------------------------------------------------
// ParseEther
// ---------------------------------------------------------------------------

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.001", "1000000000000000"},
		{" 2 ", "2000000000000000000"},
		{"0.000000000000000001", "1"},
		{"0.0000000000000000019", "1"},
		{"123456789.123456789123456789", "123456789123456789123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, codec.ParseEther(tt.in).String())
		})
	}
}

func TestParseEtherMalformedYieldsZero(t *testing.T) {
	for _, in := range []string{"abc", "", "   ", "1.2.3", "0x10", "-1", "1,5", "1e5", "1E5", "1.", "+1"} {
		t.Run(in, func(t *testing.T) {
			got := codec.ParseEther(in)
			require.NotNil(t, got)
			assert.Equal(t, 0, got.Sign())
		})
	}
}

func TestParseEtherStrictErrors(t *testing.T) {
	_, err := codec.ParseEtherStrict("abc")
	assert.ErrorIs(t, err, codec.ErrInvalidAmount)

	_, err = codec.ParseEtherStrict("-0.5")
	assert.ErrorIs(t, err, codec.ErrInvalidAmount)

	v, err := codec.ParseEtherStrict("0")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())
}

func TestParseEtherStrictRejectsExponent(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		_, err := codec.ParseEtherStrict("1e100000000")
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, codec.ErrInvalidAmount)
	case <-time.After(time.Second):
		t.Fatal("huge exponent was expanded")
	}

	_, err := codec.ParseEtherStrict("1e5")
	assert.ErrorIs(t, err, codec.ErrInvalidAmount)
	assert.False(t, codec.IsPositive("1e5"))
	assert.Equal(t, "0", codec.EstimateTokens("1e5", "0.001"))
}

func TestParseEtherStrictBounds(t *testing.T) {
	// 2^256-1 wei is the largest representable amount.
	maxEther := "115792089237316195423570985008687907853269984665640564039457.584007913129639935"
	v, err := codec.ParseEtherStrict(maxEther)
	require.NoError(t, err)
	assert.Equal(t, wei("115792089237316195423570985008687907853269984665640564039457584007913129639935"), v)

	_, err = codec.ParseEtherStrict("1" + strings.Repeat("0", 60))
	assert.ErrorIs(t, err, codec.ErrInvalidAmount)
	assert.Equal(t, 0, codec.ParseEther("1"+strings.Repeat("0", 60)).Sign())

	_, err = codec.ParseEtherStrict("0." + strings.Repeat("0", 200) + "1")
	assert.ErrorIs(t, err, codec.ErrInvalidAmount, "overlong input")
}

func TestParseUnits(t *testing.T) {
	v, err := codec.ParseUnits("50", 9)
	require.NoError(t, err)
	assert.Equal(t, wei("50000000000"), v)

	v, err = codec.ParseUnits("0.0000000001", 9)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	_, err = codec.ParseUnits("-3", 9)
	assert.ErrorIs(t, err, codec.ErrInvalidAmount)
}

func TestRoundTripDisplay(t *testing.T) {
	assert.Equal(t, "1.5000", codec.FormatEther(codec.ParseEther("1.5")))
	assert.Equal(t, "0.0010", codec.FormatEther(codec.ParseEther("0.001")))
	assert.Equal(t, "0.0000", codec.FormatEther(codec.ParseEther("abc")))
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

func TestProgress(t *testing.T) {
	assert.Equal(t, 50.0, codec.Progress("5", "10"))
	assert.Equal(t, 100.0, codec.Progress("15", "10"))
	assert.Equal(t, 0.0, codec.Progress("5", "0"))
	assert.Equal(t, 0.0, codec.Progress("5", "-3"))
	assert.Equal(t, 0.0, codec.Progress("abc", "10"))
	assert.Equal(t, 0.0, codec.Progress("5", "abc"))
	assert.Equal(t, 0.0, codec.Progress("-5", "10"))
	assert.Equal(t, 100.0, codec.Progress("10", "10"))
	assert.InDelta(t, 33.3333, codec.Progress("1", "3"), 0.0001)
}

func TestProgressMonotonic(t *testing.T) {
	prev := -1.0
	for _, raised := range []string{"0", "0.5", "1", "2.5", "7", "9.9999", "10", "11", "1000"} {
		p := codec.Progress(raised, "10")
		assert.GreaterOrEqual(t, p, prev, "raised=%s", raised)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
		prev = p
	}
}

func TestProgressWei(t *testing.T) {
	assert.Equal(t, 50.0, codec.ProgressWei(wei("5000000000000000000"), wei("10000000000000000000")))
	assert.Equal(t, 0.0, codec.ProgressWei(big.NewInt(5), big.NewInt(0)))
	assert.Equal(t, 0.0, codec.ProgressWei(nil, big.NewInt(10)))
	assert.Equal(t, 100.0, codec.ProgressWei(big.NewInt(11), big.NewInt(10)))
}

// ---------------------------------------------------------------------------
// EstimateTokens / ValidatePurchase
// ---------------------------------------------------------------------------

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, "1000.000000", codec.EstimateTokens("1", "0.001"))
	assert.Equal(t, "333.333333", codec.EstimateTokens("1", "0.003"))
	assert.Equal(t, "0", codec.EstimateTokens("1", "0"))
	assert.Equal(t, "0", codec.EstimateTokens("", "0.001"))
	assert.Equal(t, "0", codec.EstimateTokens("1", "abc"))
}

func TestValidatePurchase(t *testing.T) {
	assert.NoError(t, codec.ValidatePurchase("1", "5", "10"))
	assert.ErrorIs(t, codec.ValidatePurchase("0", "5", "10"), codec.ErrInvalidAmount)
	assert.ErrorIs(t, codec.ValidatePurchase("abc", "5", "10"), codec.ErrInvalidAmount)
	assert.ErrorIs(t, codec.ValidatePurchase("6", "5", "10"), codec.ErrAboveMaxPurchase)
	assert.ErrorIs(t, codec.ValidatePurchase("3", "5", "2"), codec.ErrInsufficientBalance)
	// Unknown limits are not enforced.
	assert.NoError(t, codec.ValidatePurchase("3", "", ""))
}

func TestIsPositive(t *testing.T) {
	assert.True(t, codec.IsPositive("0.1"))
	assert.False(t, codec.IsPositive("0"))
	assert.False(t, codec.IsPositive("-1"))
	assert.False(t, codec.IsPositive("x"))
}
