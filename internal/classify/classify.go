// Package classify maps raw failures from contract reads and transactions
// to a closed set of user-facing categories.
package classify

import (
	"errors"
	"strings"
)

// Category is one of the closed set of failure kinds.
type Category string

const (
	UserRejected       Category = "user-rejected"
	InsufficientFunds  Category = "insufficient-funds"
	NotWhitelisted     Category = "not-whitelisted"
	AboveMaxPurchase   Category = "above-max-purchase"
	ExceedsHardcap     Category = "exceeds-hardcap"
	PresalePaused      Category = "presale-paused"
	NetworkUnsupported Category = "network-unsupported"
	Unknown            Category = "unknown"
)

// genericMessage is shown when an unknown failure carries no message.
const genericMessage = "Transaction failed. Please try again."

type rule struct {
	category Category
	needle   string
	message  string
}

// rules are checked in order; the first substring match wins.
var rules = []rule{
	{UserRejected, "user rejected", "Transaction was rejected by user"},
	{InsufficientFunds, "insufficient funds", "Insufficient funds for transaction"},
	{NotWhitelisted, "Address not whitelisted", "Your address is not whitelisted for this presale"},
	{AboveMaxPurchase, "Above maximum purchase", "Purchase amount exceeds maximum allowed"},
	{ExceedsHardcap, "Would exceed hardcap", "Purchase would exceed presale hardcap"},
	{PresalePaused, "Presale is paused", "Presale is currently paused"},
	{NetworkUnsupported, "unsupported chain", networkMessage},
}

const networkMessage = "Unsupported network. Please switch to a supported network."

// Error is a classified failure.
type Error struct {
	Category Category
	// Message is the human-readable text to show the user.
	Message string
	// Err is the original failure.
	Err error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Classify maps err to a category. It returns nil for a nil error and
// never panics. An already classified error is returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	c := ClassifyMessage(err.Error())
	c.Err = err
	return c
}

// ClassifyMessage classifies a bare failure message. Unmatched messages
// fall through to Unknown carrying the message verbatim.
func ClassifyMessage(msg string) *Error {
	for _, r := range rules {
		if strings.Contains(msg, r.needle) {
			return &Error{Category: r.category, Message: r.message}
		}
	}
	if msg == "" {
		msg = genericMessage
	}
	return &Error{Category: Unknown, Message: msg}
}

// Is reports whether err classifies as category c.
func Is(err error, c Category) bool {
	ce := Classify(err)
	return ce != nil && ce.Category == c
}
