package ledger

import "github.com/pkg/errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	ErrTxnClosed = errors.New("transaction already closed")
	ErrReadOnly  = errors.New("write in read-only transaction")
)
