package api

// TokenRef identifies a token in a request payload.
type TokenRef struct {
	Address string `json:"address" example:"0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"`
	ChainID int64  `json:"chainId" example:"1"`
}

// RFQCreateRequest is the payload to open a new RFQ.
type RFQCreateRequest struct {
	BaseToken   TokenRef `json:"baseToken"`
	QuoteToken  TokenRef `json:"quoteToken"`
	BaseAmount  string   `json:"baseAmount" example:"1000000000000000000"`
	QuoteAmount string   `json:"quoteAmount" example:"3500000000"`
	ExpiresIn   int64    `json:"expiresIn" example:"1756300800"`

	MinFillAmount            string   `json:"minFillAmount,omitempty"`
	CounterpartyRestrictions []string `json:"counterpartyRestrictions,omitempty"`
}

// RFQUpdateRequest is a partial update. Absent fields are left unchanged.
type RFQUpdateRequest struct {
	BaseAmount    *string `json:"baseAmount,omitempty"`
	QuoteAmount   *string `json:"quoteAmount,omitempty"`
	ExpiresIn     *int64  `json:"expiresIn,omitempty"`
	MinFillAmount *string `json:"minFillAmount,omitempty"`

	CounterpartyRestrictions []string `json:"counterpartyRestrictions,omitempty"`
}

// RFQQueryRequest carries query-string filters for listing RFQs.
type RFQQueryRequest struct {
	BaseToken     string `query:"baseToken"`
	BaseChainID   int64  `query:"baseChainId"`
	QuoteToken    string `query:"quoteToken"`
	QuoteChainID  int64  `query:"quoteChainId"`
	ChainID       int64  `query:"chainId"`
	Creator       string `query:"creator"`
	Status        string `query:"status"`
	ExpiresAfter  int64  `query:"expiresAfter"`
	ExpiresBefore int64  `query:"expiresBefore"`

	SortBy  string `query:"sortBy"`
	SortAsc bool   `query:"sortAsc"`
	Limit   int    `query:"limit"`
	Cursor  string `query:"cursor"`
}
