package did

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/certificate"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

// Linker binds a certificate to a DID document that has none. A link is
// permanent; rotation goes through Registry.UpdateDID.
type Linker struct {
	r *Registry
}

type LinkResult struct {
	DID         string `json:"did"`
	Fingerprint string `json:"fingerprint"`
}

func NewLinker(r *Registry) *Linker {
	return &Linker{r: r}
}

func (l *Linker) Link(ctx context.Context, did string, cert string) (*LinkResult, error) {
	if did == "" || cert == "" {
		return nil, validation.Invalidf("both DID and X.509 certificate must be provided")
	}

	err := l.r.ledger.Update(ctx, func(txn ledger.Txn) error {
		doc := &Document{}
		if err := ledger.GetJSON(ctx, txn, l.r.key(did), doc); err != nil {
			return errors.Wrapf(err, "DID %s", did)
		}

		if doc.X509Cert != "" {
			return errors.Wrap(ErrCertificateBound, did)
		}

		if !l.r.validator.Validate(cert) {
			return certificate.ErrInvalid
		}

		doc.X509Cert = cert

		return ledger.PutJSON(ctx, txn, l.r.key(did), doc)
	})
	if err != nil {
		return nil, err
	}

	res := &LinkResult{DID: did}

	fp, err := certificate.Fingerprint(cert)
	if err != nil {
		logging.WithError(err).Debug("fingerprinting linked certificate")
	}
	res.Fingerprint = fp

	l.r.log(did).WithField("fingerprint", fp).Info("linked certificate to DID")

	return res, nil
}

// Entry returns the DID document or nil when it does not exist.
func (l *Linker) Entry(ctx context.Context, did string) (*Document, error) {
	doc, err := l.r.ReadDID(ctx, did)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return doc, nil
}
