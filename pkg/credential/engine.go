package credential

import (
	"time"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/pkg/ledger"
)

var (
	ErrExpired = errors.New("credential expired")
	ErrRevoked = errors.New("credential revoked")

	ErrDuplicateClaim = errors.WithMessage(ledger.ErrAlreadyExists, "credential")
)

type Option func(*Engine) error

func WithKeyspace(ks ledger.Keyspace) Option {
	return func(e *Engine) error {
		e.keys = ks
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		e.now = now
		return nil
	}
}

// Engine manages the lifecycle of access, role and claim credentials.
// Access and role credentials are keyed by the holder's DID so each DID
// holds at most one of each.
type Engine struct {
	ledger ledger.Ledger
	keys   ledger.Keyspace
	now    func() time.Time
}

func NewEngine(l ledger.Ledger, opts ...Option) (*Engine, error) {
	e := &Engine{
		ledger: l,
		keys:   ledger.TypedKeys{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}
