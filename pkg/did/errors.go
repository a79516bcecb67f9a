package did

import (
	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/pkg/ledger"
)

var (
	ErrDuplicateIdentity = errors.WithMessage(ledger.ErrAlreadyExists, "DID")
	ErrCertificateBound  = errors.New("certificate already linked")
)
