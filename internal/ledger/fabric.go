package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
)

var _ ledger.Ledger = (*FabricStore)(nil)

// Stub is the subset of the chaincode stub the ledger needs.
type Stub interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	DelState(key string) error
	GetTxTimestamp() (*timestamppb.Timestamp, error)
}

// FabricStore adapts a chaincode stub to the ledger interfaces. It lives
// for a single chaincode invocation; the peer decides whether the
// invocation's writes are committed.
type FabricStore struct {
	stub Stub
}

func NewFabricStore(stub Stub) *FabricStore {
	return &FabricStore{stub: stub}
}

// Now returns the transaction timestamp so every endorsing peer computes
// the same time.
func (f *FabricStore) Now() time.Time {
	ts, err := f.stub.GetTxTimestamp()
	if err != nil || ts == nil {
		logging.WithError(err).Warn("no transaction timestamp, using local clock")
		return time.Now().UTC()
	}

	return ts.AsTime()
}

func (f *FabricStore) Get(_ context.Context, key string) ([]byte, error) {
	d, err := f.stub.GetState(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read from world state")
	}

	if len(d) == 0 {
		return nil, ledger.ErrNotFound
	}

	return d, nil
}

func (f *FabricStore) Put(_ context.Context, key string, value []byte) error {
	if err := f.stub.PutState(key, value); err != nil {
		return errors.Wrap(err, "failed to write to world state")
	}

	return nil
}

func (f *FabricStore) Delete(_ context.Context, key string) error {
	if err := f.stub.DelState(key); err != nil {
		return errors.Wrap(err, "failed to delete from world state")
	}

	return nil
}

// Update buffers writes so reads inside the transaction observe them; the
// stub itself only ever returns committed state. Nothing reaches the stub
// unless fn succeeds.
func (f *FabricStore) Update(ctx context.Context, fn func(ledger.Txn) error) error {
	t := &fabricTxn{f: f, pending: map[string][]byte{}}

	if err := fn(t); err != nil {
		return err
	}
	t.closed = true

	for _, k := range t.order {
		v := t.pending[k]
		if v == nil {
			if err := f.Delete(ctx, k); err != nil {
				return err
			}
			continue
		}
		if err := f.Put(ctx, k, v); err != nil {
			return err
		}
	}

	return nil
}

func (f *FabricStore) View(ctx context.Context, fn func(ledger.Txn) error) error {
	return fn(&fabricTxn{f: f, readOnly: true})
}

type fabricTxn struct {
	f        *FabricStore
	pending  map[string][]byte
	order    []string
	readOnly bool
	closed   bool
}

func (t *fabricTxn) Get(ctx context.Context, key string) ([]byte, error) {
	if t.closed {
		return nil, ledger.ErrTxnClosed
	}

	if v, ok := t.pending[key]; ok {
		if v == nil {
			return nil, ledger.ErrNotFound
		}
		return v, nil
	}

	return t.f.Get(ctx, key)
}

func (t *fabricTxn) Put(_ context.Context, key string, value []byte) error {
	if err := t.writable(); err != nil {
		return err
	}

	if value == nil {
		value = []byte{}
	}
	t.stage(key, value)
	return nil
}

func (t *fabricTxn) Delete(_ context.Context, key string) error {
	if err := t.writable(); err != nil {
		return err
	}

	t.stage(key, nil)
	return nil
}

func (t *fabricTxn) stage(key string, value []byte) {
	if _, ok := t.pending[key]; !ok {
		t.order = append(t.order, key)
	}
	t.pending[key] = value
}

func (t *fabricTxn) writable() error {
	if t.closed {
		return ledger.ErrTxnClosed
	}
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	return nil
}
