package ledger

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLockErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"held by other process", syscall.EAGAIN, true},
		{"held by other process (EACCES)", syscall.EACCES, true},
		{"held by this process", errors.New("lock held by current process"), true},
		{"corrupt table", errors.New("pebble: block checksum mismatch"), false},
		{"unrelated lock wording", errors.New("manifest block locked for compaction"), false},
		{"cannot create LOCK", &os.PathError{Op: "open", Path: "LOCK", Err: syscall.EACCES}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, isLockErr(test.err))
		})
	}
}

func TestNewPebbleStoreWaitsForLock(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewPebbleStore(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}

	released := make(chan struct{})
	go func() {
		defer close(released)
		time.Sleep(150 * time.Millisecond)
		first.Close()
	}()

	second, err := NewPebbleStore(ctx, dir)
	<-released
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, second.Put(ctx, "k", []byte("v")))
}

func TestNewPebbleStoreGivesUpOnCancel(t *testing.T) {
	dir := t.TempDir()

	first, err := NewPebbleStore(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = NewPebbleStore(ctx, dir)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
