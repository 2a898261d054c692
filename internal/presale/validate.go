package presale

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sovieth88-oss/presalectl/internal/codec"
)

// ErrValidation is wrapped by every local validation failure.
var ErrValidation = errors.New("invalid input")

// ValidationError is a local check that failed before anything was sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// positiveAmount parses an ether amount that must be greater than zero.
func positiveAmount(field, s string) (*big.Int, error) {
	wei, err := codec.ParseEtherStrict(s)
	if err != nil {
		return nil, invalid(field, "%q is not a valid amount", s)
	}
	if wei.Sign() <= 0 {
		return nil, invalid(field, "must be greater than zero")
	}
	return wei, nil
}

func parseAddress(field, s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, invalid(field, "%q is not a valid address", s)
	}
	return common.HexToAddress(s), nil
}

// ParseAddressList splits a newline or comma separated list of addresses.
// Entries are trimmed and blanks dropped; order and duplicates are kept.
func ParseAddressList(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseBatch validates a whitelist batch. The batch must be non-empty and
// every entry a well-formed address.
func parseBatch(addrs []string) ([]common.Address, error) {
	if len(addrs) == 0 {
		return nil, invalid("addresses", "at least one address is required")
	}
	out := make([]common.Address, len(addrs))
	for i, a := range addrs {
		addr, err := parseAddress(fmt.Sprintf("addresses[%d]", i), a)
		if err != nil {
			return nil, err
		}
		out[i] = addr
	}
	return out, nil
}

// presaleParams is a validated config update in wei.
type presaleParams struct {
	softcap, hardcap, tokenPrice, maxPurchase *big.Int
}

func parseParams(softcap, hardcap, tokenPrice, maxPurchase string) (presaleParams, error) {
	var p presaleParams
	var err error
	if p.softcap, err = positiveAmount("softcap", softcap); err != nil {
		return p, err
	}
	if p.hardcap, err = positiveAmount("hardcap", hardcap); err != nil {
		return p, err
	}
	if p.tokenPrice, err = positiveAmount("tokenPrice", tokenPrice); err != nil {
		return p, err
	}
	if p.maxPurchase, err = positiveAmount("maxPurchase", maxPurchase); err != nil {
		return p, err
	}
	if p.hardcap.Cmp(p.softcap) <= 0 {
		return p, invalid("hardcap", "must be greater than softcap")
	}
	return p, nil
}
