package ledger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/config"
	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
)

const (
	BackendMemory = "memory"
	BackendPebble = "pebble"
	BackendSqlite = "sqlite"
)

// Backend is a locally opened ledger. The fabric adapter is not a Backend
// as it is only ever constructed from a chaincode stub.
type Backend interface {
	ledger.Ledger
	ledger.Iterable
	io.Closer
}

type memBackend struct {
	*ledger.MemStore
}

func (memBackend) Close() error { return nil }

func Open(ctx context.Context, cfg *config.Ledger) (Backend, error) {
	l := logging.Entry().WithField("backend", cfg.Backend)

	switch strings.ToLower(cfg.Backend) {
	case BackendMemory:
		l.Debug("opening ledger")
		return memBackend{ledger.NewMemStore()}, nil
	case "", BackendPebble:
		p := filepath.Join(cfg.Path, "pebble")
		l.WithField("path", p).Debug("opening ledger")
		return NewPebbleStore(ctx, p)
	case BackendSqlite:
		if err := os.MkdirAll(cfg.Path, 0700); err != nil {
			return nil, errors.Wrap(err, "creating ledger dir")
		}
		p := filepath.Join(cfg.Path, "ledger.db")
		l.WithField("path", p).Debug("opening ledger")
		return NewSqliteStore(p)
	default:
		return nil, errors.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
