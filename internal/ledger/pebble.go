package ledger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
)

var (
	_ ledger.Ledger   = (*PebbleStore)(nil)
	_ ledger.Iterable = (*PebbleStore)(nil)
)

const (
	cacheSize = 1 << 20 * 64

	openAttempts = 5
)

// PebbleStore keeps world state in a local pebble database. Each Update
// runs against its own indexed batch which is committed synchronously.
// Updates are serialized so a batch never commits over a read it did not see.
type PebbleStore struct {
	db   *pebble.DB
	txMu sync.Mutex
}

func NewPebbleStore(ctx context.Context, dir string) (*PebbleStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(err, "creating ledger dir")
	}

	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
	}

	var db *pebble.DB
	var err error

	for {
		db, err = openPebble(dir)
		if err == nil {
			break
		}

		//another process holding the LOCK file is the only transient case
		if !isLockErr(err) || b.Attempt() >= openAttempts {
			return nil, errors.Wrap(err, "opening pebble ledger")
		}

		d := b.Duration()
		logging.WithError(err).WithField("retry_in", d).Warn("ledger locked, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}

	return &PebbleStore{db: db}, nil
}

func openPebble(dir string) (*pebble.DB, error) {
	c := pebble.NewCache(cacheSize)
	tc := pebble.NewTableCache(c, 16, 100)
	defer tc.Unref()
	defer c.Unref()

	return pebble.Open(dir, &pebble.Options{Cache: c, TableCache: tc})
}

// isLockErr matches the errors vfs returns when the LOCK file is held:
// EAGAIN or EACCES from fcntl by another process, or its own message when
// the holder is this process. Failing to create the file is not one of them.
func isLockErr(err error) bool {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return false
	}

	if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EACCES) {
		return true
	}

	return strings.Contains(err.Error(), "lock held by current process")
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func (s *PebbleStore) Get(_ context.Context, key string) ([]byte, error) {
	return pebbleGet(s.db, key)
}

func (s *PebbleStore) Put(_ context.Context, key string, value []byte) error {
	if err := s.db.Set([]byte(key), value, pebble.Sync); err != nil {
		return errors.Wrap(err, "storing ledger entry")
	}

	return nil
}

func (s *PebbleStore) Delete(_ context.Context, key string) error {
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return errors.Wrap(err, "deleting ledger entry")
	}

	return nil
}

func (s *PebbleStore) Update(ctx context.Context, fn func(ledger.Txn) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	batch := s.db.NewIndexedBatch()
	t := &pebbleTxn{batch: batch}
	defer t.close()

	if err := fn(t); err != nil {
		return err
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "applying ledger batch")
	}

	return nil
}

func (s *PebbleStore) View(ctx context.Context, fn func(ledger.Txn) error) error {
	snap := s.db.NewSnapshot()
	defer snap.Close()

	return fn(&pebbleView{snap: snap})
}

func (s *PebbleStore) ForEach(_ context.Context, fn func(string, []byte) error) error {
	iter := s.db.NewIter(&pebble.IterOptions{})
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		v := make([]byte, len(iter.Value()))
		copy(v, iter.Value())

		if err := fn(string(iter.Key()), v); err != nil {
			return err
		}
	}

	return iter.Error()
}

type pebbleReader interface {
	Get([]byte) ([]byte, io.Closer, error)
}

func pebbleGet(r pebbleReader, key string) ([]byte, error) {
	d, done, err := r.Get([]byte(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ledger.ErrNotFound
		}
		return nil, errors.Wrap(err, "getting ledger entry")
	}
	defer done.Close()

	if len(d) == 0 {
		return nil, ledger.ErrNotFound
	}

	v := make([]byte, len(d))
	copy(v, d)

	return v, nil
}

type pebbleTxn struct {
	batch  *pebble.Batch
	closed bool
}

func (t *pebbleTxn) Get(_ context.Context, key string) ([]byte, error) {
	if t.closed {
		return nil, ledger.ErrTxnClosed
	}

	return pebbleGet(t.batch, key)
}

func (t *pebbleTxn) Put(_ context.Context, key string, value []byte) error {
	if t.closed {
		return ledger.ErrTxnClosed
	}

	return t.batch.Set([]byte(key), value, nil)
}

func (t *pebbleTxn) Delete(_ context.Context, key string) error {
	if t.closed {
		return ledger.ErrTxnClosed
	}

	return t.batch.Delete([]byte(key), nil)
}

func (t *pebbleTxn) close() {
	if t.closed {
		return
	}
	t.closed = true

	if err := t.batch.Close(); err != nil {
		logging.WithError(err).Debug("closing ledger batch")
	}
}

type pebbleView struct {
	snap *pebble.Snapshot
}

func (v *pebbleView) Get(_ context.Context, key string) ([]byte, error) {
	return pebbleGet(v.snap, key)
}

func (v *pebbleView) Put(context.Context, string, []byte) error {
	return ledger.ErrReadOnly
}

func (v *pebbleView) Delete(context.Context, string) error {
	return ledger.ErrReadOnly
}
