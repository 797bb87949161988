package api

import (
	"fmt"
	"strings"
)

// Validate performs shape checks only. Field-level rules (address
// format, amount encoding, expiration window) are enforced by the
// RFQ service with typed errors.
func (r RFQCreateRequest) Validate() error {
	if strings.TrimSpace(r.BaseToken.Address) == "" {
		return fmt.Errorf("baseToken.address is required")
	}
	if strings.TrimSpace(r.QuoteToken.Address) == "" {
		return fmt.Errorf("quoteToken.address is required")
	}
	if strings.TrimSpace(r.BaseAmount) == "" {
		return fmt.Errorf("baseAmount is required")
	}
	if strings.TrimSpace(r.QuoteAmount) == "" {
		return fmt.Errorf("quoteAmount is required")
	}
	if r.ExpiresIn <= 0 {
		return fmt.Errorf("expiresIn must be a UNIX timestamp in the future")
	}
	return nil
}

func (r RFQUpdateRequest) Validate() error {
	if r.BaseAmount == nil && r.QuoteAmount == nil && r.ExpiresIn == nil &&
		r.MinFillAmount == nil && r.CounterpartyRestrictions == nil {
		return fmt.Errorf("at least one updatable field is required")
	}
	return nil
}

func (r RFQQueryRequest) Validate() error {
	if (r.BaseToken == "") != (r.QuoteToken == "") {
		return fmt.Errorf("baseToken and quoteToken must be provided together")
	}
	if r.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}
