// Package query maps domain-level RFQ filter, sort, and pagination
// requests onto store-level query predicates.
package query

import (
	"strings"

	"github.com/quotedesk/rfq-client/internal/entitystore"
	"github.com/quotedesk/rfq-client/pkg/model"
)

// EntityTypeRFQ is the entity store type under which RFQs are kept.
const EntityTypeRFQ = "rfq"

// DefaultLimit is the page size when pagination is unspecified.
const DefaultLimit = 50

// Translate builds the store query for the given domain filters.
// The price-range filter is accepted but produces no predicate: price is
// not materialized on any stored field.
func Translate(filters model.QueryFilters, sort *model.SortOptions, pagination *model.PaginationOptions) entitystore.Query {
	q := entitystore.Query{
		Type:       EntityTypeRFQ,
		Predicates: translateFilters(filters),
		Limit:      DefaultLimit,
	}

	q.SortField, q.Ascending = translateSort(sort)

	if pagination != nil {
		if pagination.Limit > 0 {
			q.Limit = pagination.Limit
		}
		q.Cursor = pagination.Cursor
	}

	return q
}

func translateFilters(filters model.QueryFilters) []entitystore.Predicate {
	var preds []entitystore.Predicate

	if tp := filters.TokenPair; tp != nil {
		preds = append(preds,
			entitystore.Predicate{Field: "baseToken.address", Op: entitystore.OpEq, Value: tp.BaseToken.Address},
			entitystore.Predicate{Field: "baseToken.chainId", Op: entitystore.OpEq, Value: tp.BaseToken.ChainID},
			entitystore.Predicate{Field: "quoteToken.address", Op: entitystore.OpEq, Value: tp.QuoteToken.Address},
			entitystore.Predicate{Field: "quoteToken.chainId", Op: entitystore.OpEq, Value: tp.QuoteToken.ChainID},
		)
	}

	if filters.ChainID != 0 {
		preds = append(preds, entitystore.Predicate{
			Any: []entitystore.Predicate{
				{Field: "baseToken.chainId", Op: entitystore.OpEq, Value: filters.ChainID},
				{Field: "quoteToken.chainId", Op: entitystore.OpEq, Value: filters.ChainID},
			},
		})
	}

	if filters.Creator != "" {
		preds = append(preds, entitystore.Predicate{
			Field: "creator", Op: entitystore.OpEq, Value: strings.ToLower(filters.Creator),
		})
	}

	if exp := filters.Expiration; exp != nil {
		if exp.MinTime > 0 {
			preds = append(preds, entitystore.Predicate{Field: "expiresIn", Op: entitystore.OpGte, Value: exp.MinTime})
		}
		if exp.MaxTime > 0 {
			preds = append(preds, entitystore.Predicate{Field: "expiresIn", Op: entitystore.OpLte, Value: exp.MaxTime})
		}
	}

	if filters.Status != "" {
		preds = append(preds, entitystore.Predicate{
			Field: "status", Op: entitystore.OpEq, Value: string(filters.Status),
		})
	}

	return preds
}

func translateSort(sort *model.SortOptions) (field string, ascending bool) {
	if sort == nil {
		return "createdAt", false
	}

	switch sort.SortBy {
	case model.SortByExpiration:
		field = "expiresIn"
	case model.SortByBestPrice:
		// Price sorting is not computed; fall back to recency.
		field = "createdAt"
	default:
		field = "createdAt"
	}

	return field, sort.Ascending
}
