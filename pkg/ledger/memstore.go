package ledger

import (
	"context"
	"sort"
	"sync"
)

var (
	_ Ledger   = (*MemStore)(nil)
	_ Iterable = (*MemStore)(nil)
)

// MemStore is an in-process ledger. Updates are serialized; a transaction's
// writes are staged and only become visible once its callback returns nil.
type MemStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	objects map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string][]byte),
	}
}

func (m *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.objects[key]
	if !ok || len(d) == 0 {
		return nil, ErrNotFound
	}

	return clone(d), nil
}

func (m *MemStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = clone(value)
	return nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}

func (m *MemStore) Update(ctx context.Context, fn func(Txn) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	t := &memTxn{m: m, pending: map[string][]byte{}}
	defer t.close()

	if err := fn(t); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range t.pending {
		if v == nil {
			delete(m.objects, k)
			continue
		}
		m.objects[k] = v
	}

	return nil
}

func (m *MemStore) View(ctx context.Context, fn func(Txn) error) error {
	t := &memTxn{m: m, readOnly: true}
	defer t.close()

	return fn(t)
}

func (m *MemStore) ForEach(_ context.Context, fn func(string, []byte) error) error {
	m.mu.RLock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	sort.Strings(keys)

	for _, k := range keys {
		m.mu.RLock()
		v, ok := m.objects[k]
		m.mu.RUnlock()
		if !ok {
			continue
		}

		if err := fn(k, clone(v)); err != nil {
			return err
		}
	}

	return nil
}

func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.objects)
}

type memTxn struct {
	m        *MemStore
	pending  map[string][]byte
	readOnly bool
	closed   bool
}

func (t *memTxn) Get(ctx context.Context, key string) ([]byte, error) {
	if t.closed {
		return nil, ErrTxnClosed
	}

	if v, ok := t.pending[key]; ok {
		if v == nil {
			return nil, ErrNotFound
		}
		return clone(v), nil
	}

	return t.m.Get(ctx, key)
}

func (t *memTxn) Put(_ context.Context, key string, value []byte) error {
	if err := t.writable(); err != nil {
		return err
	}

	t.pending[key] = clone(value)
	return nil
}

func (t *memTxn) Delete(_ context.Context, key string) error {
	if err := t.writable(); err != nil {
		return err
	}

	t.pending[key] = nil
	return nil
}

func (t *memTxn) writable() error {
	if t.closed {
		return ErrTxnClosed
	}
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *memTxn) close() {
	t.closed = true
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
