// Package entitystore defines the keyed-record persistence, query, and
// notification contract the RFQ client depends on, plus a Redis-backed
// implementation with an optional Postgres journal.
package entitystore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entity is a stored keyed record. Data carries the domain payload as JSON.
type Entity struct {
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature,omitempty"`
	CreatedAt int64           `json:"createdAt"` // unix millis, store-assigned
	UpdatedAt int64           `json:"updatedAt"` // unix millis, store-assigned
}

// Op is a predicate comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

// Predicate filters entities by a dotted field path into Data.
// A non-empty Any makes the predicate a disjunction of its members and
// Field/Op/Value are ignored.
type Predicate struct {
	Field string
	Op    Op
	Value any
	Any   []Predicate
}

// Query selects, orders, and paginates entities of one type.
type Query struct {
	Type       string
	Predicates []Predicate
	SortField  string // dotted path into Data
	Ascending  bool
	Limit      int
	Cursor     string
}

// Result is one page of matching entities. Total counts all matches,
// not just the returned page.
type Result struct {
	Entities   []Entity
	Total      int
	NextCursor string
}

// WatchOptions configures a polling subscription over one entity type.
type WatchOptions struct {
	Type         string
	Predicates   []Predicate
	PollInterval time.Duration
	OnCreated    func(Entity)
	OnUpdated    func(Entity)
}

// UnsubscribeFunc stops a watch. Safe to call more than once.
type UnsubscribeFunc func()

// Store is the entity store collaborator contract.
type Store interface {
	// Write persists an entity atomically and returns the stored record
	// with store-assigned timestamps.
	Write(ctx context.Context, e Entity) (Entity, error)

	// Get returns the entity, or (nil, nil) when absent.
	Get(ctx context.Context, typ, key string) (*Entity, error)

	// Delete removes the entity. Deleting an absent key is not an error.
	Delete(ctx context.Context, typ, key string) error

	// Query returns a filtered, sorted, paginated page of entities.
	Query(ctx context.Context, q Query) (*Result, error)

	// Watch polls for created/updated entities and invokes the callbacks.
	// It returns immediately; subscription setup failure is not retried.
	Watch(ctx context.Context, opts WatchOptions) (UnsubscribeFunc, error)
}

const cursorPrefix = "o:"

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil || !strings.HasPrefix(string(raw), cursorPrefix) {
		return 0, fmt.Errorf("malformed cursor %q", cursor)
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(string(raw), cursorPrefix))
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("malformed cursor %q", cursor)
	}
	return offset, nil
}
