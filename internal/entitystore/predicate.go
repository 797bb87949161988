package entitystore

import (
	"encoding/json"
	"sort"
	"strings"
)

// matches evaluates every predicate against the entity's decoded Data.
// Unknown fields never match.
func matches(doc map[string]any, preds []Predicate) bool {
	for _, p := range preds {
		if !matchOne(doc, p) {
			return false
		}
	}
	return true
}

func matchOne(doc map[string]any, p Predicate) bool {
	if len(p.Any) > 0 {
		for _, alt := range p.Any {
			if matchOne(doc, alt) {
				return true
			}
		}
		return false
	}

	got, ok := lookup(doc, p.Field)
	if !ok {
		return false
	}

	switch p.Op {
	case OpEq:
		return equal(got, p.Value)
	case OpGte:
		cmp, ok := compare(got, p.Value)
		return ok && cmp >= 0
	case OpLte:
		cmp, ok := compare(got, p.Value)
		return ok && cmp <= 0
	default:
		return false
	}
}

// lookup resolves a dotted path ("baseToken.chainId") in a decoded JSON doc.
func lookup(doc map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// equal compares two values. String comparison is case-insensitive so
// hex addresses match regardless of checksum casing.
func equal(a, b any) bool {
	if as, aok := asString(a); aok {
		bs, bok := asString(b)
		return bok && strings.EqualFold(as, bs)
	}
	if cmp, ok := compare(a, b); ok {
		return cmp == 0
	}
	return false
}

// compare orders two values, numerically when both are numeric,
// lexicographically when both are strings.
func compare(a, b any) (int, bool) {
	if af, aok := asNumber(a); aok {
		bf, bok := asNumber(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if as, aok := asString(a); aok {
		bs, bok := asString(b)
		if !bok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// sortEntities orders decoded entities in place by a Data field path.
// Entities missing the field sort last regardless of direction.
func sortEntities(ents []Entity, docs []map[string]any, field string, ascending bool) {
	idx := make([]int, len(ents))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(x, y int) bool {
		a, aok := lookup(docs[idx[x]], field)
		b, bok := lookup(docs[idx[y]], field)
		if !aok || !bok {
			return aok && !bok
		}
		cmp, ok := compare(a, b)
		if !ok {
			return false
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})

	outEnts := make([]Entity, len(ents))
	outDocs := make([]map[string]any, len(docs))
	for i, j := range idx {
		outEnts[i] = ents[j]
		outDocs[i] = docs[j]
	}
	copy(ents, outEnts)
	copy(docs, outDocs)
}
