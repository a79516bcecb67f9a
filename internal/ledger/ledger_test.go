package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/agritrace/internal/config"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/provenance"
)

func openBackends(t *testing.T) map[string]Backend {
	ctx := context.Background()
	backends := map[string]Backend{}

	for _, name := range []string{BackendMemory, BackendPebble, BackendSqlite} {
		b, err := Open(ctx, &config.Ledger{Backend: name, Path: t.TempDir()})
		if err != nil {
			t.Fatal(err)
		}
		b := b
		t.Cleanup(func() { b.Close() })

		backends[name] = b
	}

	return backends
}

func TestBackendsPutGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(ctx, "missing")
			assert.ErrorIs(t, err, ledger.ErrNotFound)

			require.NoError(t, b.Put(ctx, "token:H1", []byte(`{"id":"H1"}`)))
			require.NoError(t, b.Put(ctx, "token:H1", []byte(`{"id":"H1","owner":"A"}`)))

			v, err := b.Get(ctx, "token:H1")
			require.NoError(t, err)
			assert.Equal(t, `{"id":"H1","owner":"A"}`, string(v))

			require.NoError(t, b.Delete(ctx, "token:H1"))
			_, err = b.Get(ctx, "token:H1")
			assert.ErrorIs(t, err, ledger.ErrNotFound)
		})
	}
}

func TestBackendsUpdateRollback(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Put(ctx, "parent", []byte("p0")))

			err := b.Update(ctx, func(txn ledger.Txn) error {
				if err := txn.Put(ctx, "parent", []byte("p1")); err != nil {
					return err
				}
				if err := txn.Put(ctx, "child", []byte("c")); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			v, err := b.Get(ctx, "parent")
			require.NoError(t, err)
			assert.Equal(t, "p0", string(v))

			_, err = b.Get(ctx, "child")
			assert.ErrorIs(t, err, ledger.ErrNotFound)
		})
	}
}

func TestBackendsUpdateCommit(t *testing.T) {
	ctx := context.Background()

	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := b.Update(ctx, func(txn ledger.Txn) error {
				if err := txn.Put(ctx, "a", []byte("1")); err != nil {
					return err
				}

				v, err := txn.Get(ctx, "a")
				if err != nil {
					return err
				}
				assert.Equal(t, "1", string(v))

				return txn.Put(ctx, "b", []byte("2"))
			})
			require.NoError(t, err)

			keys := []string{}
			err = b.ForEach(ctx, func(k string, _ []byte) error {
				keys = append(keys, k)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, keys)
		})
	}
}

func TestBackendsViewReadOnly(t *testing.T) {
	ctx := context.Background()

	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := b.View(ctx, func(txn ledger.Txn) error {
				return txn.Put(ctx, "a", []byte("1"))
			})
			assert.ErrorIs(t, err, ledger.ErrReadOnly)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Ledger{Backend: "etcd"})
	assert.Error(t, err)
}

func TestBackendsSerializeUpdates(t *testing.T) {
	ctx := context.Background()
	const n = 16

	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			g, err := provenance.NewGraph(b)
			if err != nil {
				t.Fatal(err)
			}

			_, err = g.CreateParent(ctx, provenance.ParentRequest{ID: "H1", Owner: "farmer"})
			require.NoError(t, err)

			var wg sync.WaitGroup
			errs := make(chan error, n)

			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := g.CreateChild(ctx, provenance.ChildRequest{
						ID:       fmt.Sprintf("P%d", i),
						ParentID: "H1",
						Owner:    "farmer",
						Metadata: json.RawMessage(`{}`),
					})
					errs <- err
				}(i)
			}

			wg.Wait()
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}

			children, err := g.Children(ctx, "H1")
			require.NoError(t, err)
			assert.Len(t, children, n)

			for i := 0; i < n; i++ {
				assert.NoError(t, g.CheckLinks(ctx, fmt.Sprintf("P%d", i)))
			}
			assert.NoError(t, g.CheckLinks(ctx, "H1"))
		})
	}
}
