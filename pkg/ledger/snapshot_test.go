package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotExportImport(t *testing.T) {
	ctx := context.Background()
	src := NewMemStore()
	src.Put(ctx, "token:H1", []byte(`{"id":"H1"}`))
	src.Put(ctx, "did:did:example:1", []byte(`{"did":"did:example:1"}`))

	snap, err := Export(ctx, src, "test-chain", TypedKeys{})
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, "did:did:example:1", snap.Entries[0].Key)

	b, err := snap.Marshal()
	require.NoError(t, err)

	rb := &Snapshot{}
	require.NoError(t, rb.Unmarshal(b))

	dst := NewMemStore()
	require.NoError(t, Import(ctx, dst, rb, TypedKeys{}))

	v, err := dst.Get(ctx, "token:H1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"H1"}`, string(v))
}

func TestSnapshotImportKeyMismatch(t *testing.T) {
	ctx := context.Background()
	snap := &Snapshot{Version: SnapshotVersion1, Keys: "flat", Entries: []Entry{{Key: "a", Value: []byte("1")}}}

	dst := NewMemStore()
	err := Import(ctx, dst, snap, TypedKeys{})
	assert.Error(t, err)
	assert.Equal(t, 0, dst.Len())
}
