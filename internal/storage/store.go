// Package storage persists all ledger state in one polymorphic key-value
// collection: every entity is a Record keyed by owner (partition key) and
// a kind-prefixed sort key. Backends implement the Store interface; the
// typed Repository sits on top.
package storage

import (
	"context"
	"time"
)

// Record kinds. The kind tag discriminates entity types sharing the table.
const (
	KindUser         = "user"
	KindBankAccount  = "bank-account"
	KindCreditCard   = "credit-card"
	KindTransaction  = "transaction"
	KindDailyBalance = "daily-balance"
	KindCategory     = "category"
)

// Record is one stored item. Data holds the JSON-encoded entity.
type Record struct {
	PK        string
	SK        string
	Kind      string
	Data      []byte
	UpdatedAt time.Time
}

// QueryOptions narrows and orders a partition query.
type QueryOptions struct {
	// Prefix restricts results to sort keys beginning with it.
	Prefix string
	// Descending reverses the sort-key order (default ascending).
	Descending bool
}

// Store is the abstract key-value collection. Put is an unconditional
// upsert on (PK, SK). Get returns (nil, nil) on a miss; absence is not
// an error. Query returns a partition ordered by sort key. Scan walks the
// whole table with a filter; it is O(table size) and only used where no
// partition key applies.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, pk, sk string) (*Record, error)
	Delete(ctx context.Context, pk, sk string) error
	Query(ctx context.Context, pk string, opts QueryOptions) ([]Record, error)
	Scan(ctx context.Context, filter func(Record) bool) ([]Record, error)
}
