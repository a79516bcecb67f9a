package ledger

import (
	"context"
)

// Store is the minimal key/value surface of the ledger world state.
// Get returns ErrNotFound when the key is absent.
type Store interface {
	Get(context.Context, string) ([]byte, error)
	Put(context.Context, string, []byte) error
	Delete(context.Context, string) error
}

// Txn is a Store scoped to a single transaction. Reads observe the
// transaction's own pending writes.
type Txn interface {
	Store
}

// Transactor runs a callback as one ledger transaction. Update applies
// every write made through the Txn or none of them: a non-nil error
// from the callback discards the pending writes.
type Transactor interface {
	Update(context.Context, func(Txn) error) error
	View(context.Context, func(Txn) error) error
}

// Ledger is what the services are constructed with.
type Ledger interface {
	Store
	Transactor
}

// Iterable stores can enumerate their entries in key order, used for
// snapshots.
type Iterable interface {
	ForEach(context.Context, func(key string, value []byte) error) error
}

type Entry struct {
	Key   string `msgpack:"k"`
	Value []byte `msgpack:"v"`
}
