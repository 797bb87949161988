package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an RFQ.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether no further mutation of the RFQ is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusFilled || s == StatusCancelled
}

// TokenInfo identifies a fungible asset on a specific chain.
type TokenInfo struct {
	Address string `json:"address"`
	ChainID int64  `json:"chainId"`
}

// Fill records a counterparty execution against an RFQ.
// Reserved for forward compatibility; fill accounting is not implemented.
type Fill struct {
	Acceptor  string `json:"acceptor"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	TxRef     string `json:"txRef,omitempty"`
}

// RFQ is a Request for Quote: proposed trade terms awaiting acceptance.
// Amounts are decimal-integer strings in the token's smallest unit and are
// never represented as floating point.
type RFQ struct {
	ID         string    `json:"id"`
	Creator    string    `json:"creator"`
	BaseToken  TokenInfo `json:"baseToken"`
	QuoteToken TokenInfo `json:"quoteToken"`

	BaseAmount  string `json:"baseAmount"`
	QuoteAmount string `json:"quoteAmount"`

	// ExpiresIn is a UNIX-seconds timestamp after which consumers should
	// treat the RFQ as stale. Expiry is advisory; the store does not purge.
	ExpiresIn int64  `json:"expiresIn"`
	Status    Status `json:"status"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`

	// Reserved fields, not enforced by any invariant.
	FilledAmount             string   `json:"filledAmount,omitempty"`
	Fills                    []Fill   `json:"fills,omitempty"`
	MinFillAmount            string   `json:"minFillAmount,omitempty"`
	CounterpartyRestrictions []string `json:"counterpartyRestrictions,omitempty"`
}

// Price returns the quote/base amount ratio as an arbitrary-precision decimal.
// Display helper only: price is never used for store-side filtering or sorting.
func (r *RFQ) Price() (decimal.Decimal, error) {
	base, err := decimal.NewFromString(r.BaseAmount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid base amount %q: %w", r.BaseAmount, err)
	}
	if base.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("base amount is zero")
	}
	quote, err := decimal.NewFromString(r.QuoteAmount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid quote amount %q: %w", r.QuoteAmount, err)
	}
	return quote.DivRound(base, 18), nil
}

// CreateRFQInput carries the caller-supplied fields for a new RFQ.
type CreateRFQInput struct {
	BaseToken  TokenInfo `json:"baseToken"`
	QuoteToken TokenInfo `json:"quoteToken"`

	BaseAmount  string `json:"baseAmount"`
	QuoteAmount string `json:"quoteAmount"`
	ExpiresIn   int64  `json:"expiresIn"`

	MinFillAmount            string   `json:"minFillAmount,omitempty"`
	CounterpartyRestrictions []string `json:"counterpartyRestrictions,omitempty"`
}

// UpdateRFQInput carries a partial update. Nil fields are left unchanged.
// Tokens are immutable after creation and have no update path.
type UpdateRFQInput struct {
	BaseAmount    *string `json:"baseAmount,omitempty"`
	QuoteAmount   *string `json:"quoteAmount,omitempty"`
	ExpiresIn     *int64  `json:"expiresIn,omitempty"`
	Status        *Status `json:"status,omitempty"`
	MinFillAmount *string `json:"minFillAmount,omitempty"`

	CounterpartyRestrictions []string `json:"counterpartyRestrictions,omitempty"`
}
