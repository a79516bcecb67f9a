package compliance

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

var (
	ErrDuplicateCertificate = errors.WithMessage(ledger.ErrAlreadyExists, "quality certificate")
)

// QualityCertificate attests that a product met a standard. Evidence is
// the CID of the traceability record as it was when certified.
type QualityCertificate struct {
	CertificateID string `json:"certificateId"`
	ProductID     string `json:"productId"`
	StandardID    string `json:"standardId"`
	IssuedBy      string `json:"issuedBy"`
	Timestamp     string `json:"timestamp"`
	Evidence      string `json:"evidence"`
}

func (w *Workflow) certificateKey(id string) string {
	return w.keys.Key(ledger.KindQualityCert, id)
}

func (w *Workflow) IssueQualityCertificate(ctx context.Context, productID, standardID, certificateID string) (*QualityCertificate, error) {
	if productID == "" || standardID == "" || certificateID == "" {
		return nil, validation.Invalidf("productId, standardId and certificateId are required")
	}

	var qc *QualityCertificate

	err := w.ledger.Update(ctx, func(txn ledger.Txn) error {
		exists, err := ledger.Exists(ctx, txn, w.certificateKey(certificateID))
		if err != nil {
			return err
		}
		if exists {
			return errors.Wrap(ErrDuplicateCertificate, certificateID)
		}

		res, raw, err := w.check(ctx, txn, productID, standardID)
		if err != nil {
			return err
		}

		if !res.Compliant {
			return &FailureError{
				ProductID:      productID,
				StandardID:     standardID,
				FailedCriteria: res.FailedCriteria,
			}
		}

		evidence, err := Evidence(raw)
		if err != nil {
			return err
		}

		qc = &QualityCertificate{
			CertificateID: certificateID,
			ProductID:     productID,
			StandardID:    standardID,
			IssuedBy:      w.authority,
			Timestamp:     w.now().UTC().Format(time.RFC3339),
			Evidence:      evidence.String(),
		}

		return ledger.PutJSON(ctx, txn, w.certificateKey(certificateID), qc)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{
		"certificate": certificateID,
		"product":     productID,
		"standard":    standardID,
		"evidence":    qc.Evidence,
	}).Info("quality certificate issued")

	return qc, nil
}

func (w *Workflow) ReadCertificate(ctx context.Context, id string) (*QualityCertificate, error) {
	qc := &QualityCertificate{}

	err := w.ledger.View(ctx, func(txn ledger.Txn) error {
		return ledger.GetJSON(ctx, txn, w.certificateKey(id), qc)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "quality certificate %s", id)
	}

	return qc, nil
}

// Evidence is the raw-codec CIDv1 of b.
func Evidence(b []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(b, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "hashing evidence")
	}

	return cid.NewCidV1(cid.Raw, mh), nil
}
