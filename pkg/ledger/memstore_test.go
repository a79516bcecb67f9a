package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	if err := m.Put(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}

	v, err := m.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte("1"), v)

	if err := m.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}

	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreUpdateCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	err := m.Update(ctx, func(txn Txn) error {
		if err := txn.Put(ctx, "parent", []byte("p")); err != nil {
			return err
		}
		if err := txn.Put(ctx, "child", []byte("c")); err != nil {
			return err
		}

		//own writes are visible inside the txn
		v, err := txn.Get(ctx, "child")
		assert.NoError(t, err)
		assert.Equal(t, []byte("c"), v)

		//but not outside it yet
		_, err = m.Get(ctx, "child")
		assert.ErrorIs(t, err, ErrNotFound)

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 2, m.Len())
}

func TestMemStoreUpdateRollsBack(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	m.Put(ctx, "parent", []byte("p0"))

	boom := errors.New("boom")

	err := m.Update(ctx, func(txn Txn) error {
		txn.Put(ctx, "parent", []byte("p1"))
		txn.Put(ctx, "child", []byte("c"))
		txn.Delete(ctx, "parent")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := m.Get(ctx, "parent")
	assert.NoError(t, err)
	assert.Equal(t, []byte("p0"), v)

	_, err = m.Get(ctx, "child")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreViewIsReadOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	err := m.View(ctx, func(txn Txn) error {
		return txn.Put(ctx, "a", []byte("1"))
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestMemStoreDeleteInTxn(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	m.Put(ctx, "a", []byte("1"))

	err := m.Update(ctx, func(txn Txn) error {
		if err := txn.Delete(ctx, "a"); err != nil {
			return err
		}
		_, err := txn.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	assert.NoError(t, err)

	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
