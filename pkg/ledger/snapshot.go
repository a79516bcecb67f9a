package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	SnapshotVersion1 uint8 = 1
)

// Snapshot is a portable copy of ledger state, used to seed a fresh ledger
// or move state between backends.
type Snapshot struct {
	Version   uint8   `msgpack:"v"`
	ChainID   string  `msgpack:"c"`
	CreatedAt int64   `msgpack:"t"`
	Keys      string  `msgpack:"ks"`
	Entries   []Entry `msgpack:"e"`
}

func Export(ctx context.Context, src Iterable, chainID string, ks Keyspace) (*Snapshot, error) {
	s := &Snapshot{
		Version:   SnapshotVersion1,
		ChainID:   chainID,
		CreatedAt: time.Now().Unix(),
		Keys:      ks.Name(),
	}

	err := src.ForEach(ctx, func(k string, v []byte) error {
		s.Entries = append(s.Entries, Entry{Key: k, Value: v})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "iterating ledger")
	}

	return s, nil
}

// Import writes every entry of s into dst in a single transaction.
// The snapshot must have been taken with the same key scheme.
func Import(ctx context.Context, dst Transactor, s *Snapshot, ks Keyspace) error {
	if s.Version != SnapshotVersion1 {
		return errors.Errorf("unsupported snapshot version %d", s.Version)
	}

	if s.Keys != ks.Name() {
		return errors.Errorf("snapshot uses %s keys, ledger uses %s", s.Keys, ks.Name())
	}

	return dst.Update(ctx, func(txn Txn) error {
		for _, e := range s.Entries {
			if err := txn.Put(ctx, e.Key, e.Value); err != nil {
				return errors.Wrapf(err, "importing %s", e.Key)
			}
		}
		return nil
	})
}

func (s *Snapshot) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling snapshot")
	}

	return b, nil
}

func (s *Snapshot) Unmarshal(b []byte) error {
	if err := msgpack.Unmarshal(b, s); err != nil {
		return errors.Wrap(err, "unmarshalling snapshot")
	}

	return nil
}
