// Package codec converts presale amounts between the chain's integer
// smallest unit (wei) and human decimal strings.
//
// All conversions are exact: values are carried as arbitrary-precision
// integers or decimals and never pass through float64, except for the final
// percentage returned by Progress.
//
// Rounding: formatting truncates toward zero after scaling, so "1.99999"
// displayed with 4 places is "1.9999". Parsing floors any digits beyond the
// 18th fractional place.
package codec

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

const (
	// Decimals is the number of fractional digits of the native currency.
	Decimals = 18
	// DisplayPlaces is the default number of fractional digits shown.
	DisplayPlaces = 4
	// TokenPlaces is the precision of estimated token amounts.
	TokenPlaces = 6
)

// Errors returned by the strict parsers and validators.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAboveMaxPurchase    = errors.New("amount above maximum purchase")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// maxAmountLen bounds the input accepted by the parsers. uint256 wei with a
// full fractional part fits well within it.
const maxAmountLen = 128

var (
	hundred = decimal.NewFromInt(100)

	// Plain decimal notation only. Exponents are rejected.
	plainAmount = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// FormatEther formats a wei amount with DisplayPlaces fractional digits.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, DisplayPlaces)
}

// FormatUnits formats a wei amount with exactly places fractional digits,
// truncating toward zero. A nil amount formats as zero.
func FormatUnits(wei *big.Int, places int32) string {
	if wei == nil {
		wei = new(big.Int)
	}
	return decimal.NewFromBigInt(wei, -Decimals).Truncate(places).StringFixed(places)
}

// FormatExact formats a wei amount at full precision with trailing zeros
// removed ("1500000000000000000" → "1.5").
func FormatExact(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -Decimals).String()
}

// ParseEther converts a decimal ether string to wei. Malformed, empty or
// negative input yields zero; it never fails.
func ParseEther(s string) *big.Int {
	wei, err := ParseEtherStrict(s)
	if err != nil {
		return new(big.Int)
	}
	return wei
}

// ParseEtherStrict is like ParseEther but reports input it cannot convert
// as ErrInvalidAmount.
func ParseEtherStrict(s string) (*big.Int, error) {
	return ParseUnits(s, Decimals)
}

// ParseUnits converts a plain decimal string to an integer amount with the
// given number of fractional digits, flooring any beyond them. The result
// must fit in a uint256.
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	d, err := parse(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	n := d.Shift(decimals).Truncate(0).BigInt()
	if n.Cmp(math.MaxBig256) > 0 {
		return nil, fmt.Errorf("%w: %q exceeds uint256", ErrInvalidAmount, s)
	}
	return n, nil
}

// Progress returns raised/target as a percentage clamped to [0,100].
// It returns 0 when target is not positive or either input is malformed.
func Progress(raised, target string) float64 {
	r, err := parse(raised)
	if err != nil {
		return 0
	}
	c, err := parse(target)
	if err != nil {
		return 0
	}
	return progress(r, c)
}

// ProgressWei is Progress over integer amounts.
func ProgressWei(raised, target *big.Int) float64 {
	if raised == nil || target == nil {
		return 0
	}
	return progress(decimal.NewFromBigInt(raised, 0), decimal.NewFromBigInt(target, 0))
}

func progress(raised, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	p := raised.Div(target).Mul(hundred)
	switch {
	case p.IsNegative():
		return 0
	case p.GreaterThan(hundred):
		return 100
	}
	return p.InexactFloat64()
}

// EstimateTokens returns how many tokens ethAmount buys at tokenPrice
// (ether per token), with TokenPlaces fractional digits. It returns "0"
// when either input is malformed or the price is zero.
func EstimateTokens(ethAmount, tokenPrice string) string {
	eth, err := parse(ethAmount)
	if err != nil {
		return "0"
	}
	price, err := parse(tokenPrice)
	if err != nil || !price.IsPositive() {
		return "0"
	}
	return eth.DivRound(price, Decimals).StringFixed(TokenPlaces)
}

// ValidatePurchase checks a purchase amount against the per-address maximum
// and the buyer's balance. Empty or malformed limits are not enforced.
func ValidatePurchase(amount, maxPurchase, balance string) error {
	a, err := parse(amount)
	if err != nil || !a.IsPositive() {
		return fmt.Errorf("%w: please enter a valid amount", ErrInvalidAmount)
	}
	if limit, err := parse(maxPurchase); err == nil && a.GreaterThan(limit) {
		return fmt.Errorf("%w: maximum purchase is %s ETH", ErrAboveMaxPurchase, maxPurchase)
	}
	if bal, err := parse(balance); err == nil && a.GreaterThan(bal) {
		return ErrInsufficientBalance
	}
	return nil
}

// IsPositive reports whether s is a well-formed amount greater than zero.
func IsPositive(s string) bool {
	d, err := parse(s)
	return err == nil && d.IsPositive()
}

func parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if len(s) > maxAmountLen || !plainAmount.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %.32q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
