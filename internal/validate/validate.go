package validate

import (
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quotedesk/rfq-client/pkg/model"
)

// MaxExpirationWindow is the furthest an RFQ expiry may lie in the future.
const MaxExpirationWindow = 30 * 24 * 3600 // seconds

// All validators are pure and run before any store interaction; a failure
// returns a *model.ValidationError and must prevent the store call.

// Address checks for a 0x-prefixed 20-byte hex address (checksum-agnostic).
func Address(field, addr string) error {
	if addr == "" {
		return model.NewValidationError(field, "address is required")
	}
	if !strings.HasPrefix(addr, "0x") || len(addr) != 42 || !common.IsHexAddress(addr) {
		return model.NewValidationError(field, "address must be 0x followed by 40 hex digits")
	}
	return nil
}

// Token checks a TokenInfo: valid address and positive chain id.
func Token(field string, t model.TokenInfo) error {
	if err := Address(field+".address", t.Address); err != nil {
		return err
	}
	if t.ChainID <= 0 {
		return model.NewValidationError(field+".chainId", "chain id must be a positive integer")
	}
	return nil
}

// Amount checks a smallest-unit quantity: decimal digits only, strictly
// positive. Rejecting the literal "0" together with the digits-only rule
// also rejects signs, spaces, and leading garbage.
func Amount(field, amount string) error {
	if amount == "" {
		return model.NewValidationError(field, "amount is required")
	}
	for _, c := range amount {
		if c < '0' || c > '9' {
			return model.NewValidationError(field, "amount must contain decimal digits only")
		}
	}
	if amount == "0" {
		return model.NewValidationError(field, "amount must be greater than 0")
	}
	return nil
}

// Expiration checks a UNIX-seconds expiry: in the future, at most 30 days out.
func Expiration(field string, expiresIn int64) error {
	if expiresIn <= 0 {
		return model.NewValidationError(field, "expiration must be a positive timestamp")
	}
	now := time.Now().Unix()
	if expiresIn <= now {
		return model.NewValidationError(field, "expiration must be in the future")
	}
	if expiresIn > now+MaxExpirationWindow {
		return model.NewValidationError(field, "expiration must be within 30 days")
	}
	return nil
}

// RFQID checks an RFQ identifier: non-empty, non-whitespace-only.
func RFQID(id string) error {
	if strings.TrimSpace(id) == "" {
		return model.NewValidationError("id", "rfq id is required")
	}
	return nil
}

// CreateInput checks every field of a create request.
func CreateInput(in model.CreateRFQInput) error {
	if err := Token("baseToken", in.BaseToken); err != nil {
		return err
	}
	if err := Token("quoteToken", in.QuoteToken); err != nil {
		return err
	}
	if err := Amount("baseAmount", in.BaseAmount); err != nil {
		return err
	}
	if err := Amount("quoteAmount", in.QuoteAmount); err != nil {
		return err
	}
	if err := Expiration("expiresIn", in.ExpiresIn); err != nil {
		return err
	}
	if in.MinFillAmount != "" {
		if err := Amount("minFillAmount", in.MinFillAmount); err != nil {
			return err
		}
	}
	for i, addr := range in.CounterpartyRestrictions {
		if err := Address("counterpartyRestrictions."+strconv.Itoa(i), addr); err != nil {
			return err
		}
	}
	return nil
}
