package model

import "github.com/shopspring/decimal"

// TokenPairFilter matches RFQs offering base for quote on specific chains.
type TokenPairFilter struct {
	BaseToken  TokenInfo `json:"baseToken"`
	QuoteToken TokenInfo `json:"quoteToken"`
}

// TimeRangeFilter is an inclusive [MinTime, MaxTime] window in UNIX seconds.
// A zero bound is open-ended.
type TimeRangeFilter struct {
	MinTime int64 `json:"minTime,omitempty"`
	MaxTime int64 `json:"maxTime,omitempty"`
}

// PriceRangeFilter bounds the quote/base amount ratio.
// Declared interface only: the store translation does not evaluate it.
type PriceRangeFilter struct {
	MinPrice decimal.Decimal `json:"minPrice"`
	MaxPrice decimal.Decimal `json:"maxPrice"`
}

// QueryFilters is the set of optional predicates for an RFQ query.
// The zero value matches everything.
type QueryFilters struct {
	TokenPair  *TokenPairFilter  `json:"tokenPair,omitempty"`
	ChainID    int64             `json:"chainId,omitempty"`
	Creator    string            `json:"creator,omitempty"`
	Expiration *TimeRangeFilter  `json:"expiration,omitempty"`
	Status     Status            `json:"status,omitempty"`
	PriceRange *PriceRangeFilter `json:"priceRange,omitempty"`
}

// FilterByTokenPair returns a filter fragment matching both sides of a pair.
func FilterByTokenPair(base, quote TokenInfo) QueryFilters {
	return QueryFilters{TokenPair: &TokenPairFilter{BaseToken: base, QuoteToken: quote}}
}

// FilterByChain returns a filter fragment matching RFQs whose base or
// quote token lives on the given chain.
func FilterByChain(chainID int64) QueryFilters {
	return QueryFilters{ChainID: chainID}
}

// FilterByCreator returns a filter fragment matching a creator address.
func FilterByCreator(creator string) QueryFilters {
	return QueryFilters{Creator: creator}
}

// FilterByExpiration returns a filter fragment bounding expiresIn.
func FilterByExpiration(minTime, maxTime int64) QueryFilters {
	return QueryFilters{Expiration: &TimeRangeFilter{MinTime: minTime, MaxTime: maxTime}}
}

// FilterByPriceRange returns a filter fragment bounding the quote/base ratio.
// Accepted but not evaluated by the store translation.
func FilterByPriceRange(minPrice, maxPrice decimal.Decimal) QueryFilters {
	return QueryFilters{PriceRange: &PriceRangeFilter{MinPrice: minPrice, MaxPrice: maxPrice}}
}

// MergeFilters combines filter fragments; later fragments win on conflict.
func MergeFilters(fragments ...QueryFilters) QueryFilters {
	var out QueryFilters
	for _, f := range fragments {
		if f.TokenPair != nil {
			out.TokenPair = f.TokenPair
		}
		if f.ChainID != 0 {
			out.ChainID = f.ChainID
		}
		if f.Creator != "" {
			out.Creator = f.Creator
		}
		if f.Expiration != nil {
			out.Expiration = f.Expiration
		}
		if f.Status != "" {
			out.Status = f.Status
		}
		if f.PriceRange != nil {
			out.PriceRange = f.PriceRange
		}
	}
	return out
}

// SortField names an RFQ ordering.
type SortField string

const (
	SortByCreationTime SortField = "CREATION_TIME"
	SortByExpiration   SortField = "EXPIRATION"

	// SortByBestPrice is accepted but falls back to recency ordering;
	// price-based sorting is not computed against any stored field.
	SortByBestPrice SortField = "BEST_PRICE"
)

// SortOptions selects the ordering of query results.
type SortOptions struct {
	SortBy    SortField `json:"sortBy"`
	Ascending bool      `json:"ascending"`
}

// PaginationOptions selects a page of query results.
type PaginationOptions struct {
	Limit  int    `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// QueryResult is one page of matching RFQs.
type QueryResult struct {
	RFQs       []RFQ  `json:"rfqs"`
	Total      int    `json:"total"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}
