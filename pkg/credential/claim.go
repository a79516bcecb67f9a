package credential

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// ClaimCredential is a generic credential attesting claims about a holder.
type ClaimCredential struct {
	CredentialID string `json:"credentialId"`
	HolderID     string `json:"holderId"`
	Claims       string `json:"claims"`
	IssuedAt     string `json:"issuedAt"`
	Status       Status `json:"status"`
}

type claimRequest struct {
	CredentialID string `json:"credentialId" validate:"required"`
	HolderID     string `json:"holderId" validate:"required"`
	Claims       string `json:"claims" validate:"required"`
}

func (e *Engine) claimKey(id string) string {
	return e.keys.Key(ledger.KindClaimCredential, id)
}

func (e *Engine) IssueClaim(ctx context.Context, id, holder, claims string) (*ClaimCredential, error) {
	if err := validation.Struct(&claimRequest{CredentialID: id, HolderID: holder, Claims: claims}); err != nil {
		return nil, err
	}

	vc := &ClaimCredential{
		CredentialID: id,
		HolderID:     holder,
		Claims:       claims,
		IssuedAt:     e.now().UTC().Format(time.RFC3339),
		Status:       StatusActive,
	}

	err := e.ledger.Update(ctx, func(txn ledger.Txn) error {
		exists, err := ledger.Exists(ctx, txn, e.claimKey(id))
		if err != nil {
			return err
		}
		if exists {
			return errors.Wrap(ErrDuplicateClaim, id)
		}

		return ledger.PutJSON(ctx, txn, e.claimKey(id), vc)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{"credential": id, "holder": holder}).Info("credential issued")

	return vc, nil
}

func (e *Engine) ReadClaim(ctx context.Context, id string) (*ClaimCredential, error) {
	vc := &ClaimCredential{}

	err := e.ledger.View(ctx, func(txn ledger.Txn) error {
		return ledger.GetJSON(ctx, txn, e.claimKey(id), vc)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "credential %s", id)
	}

	return vc, nil
}

func (e *Engine) RevokeClaim(ctx context.Context, id string) error {
	err := e.ledger.Update(ctx, func(txn ledger.Txn) error {
		vc := &ClaimCredential{}
		if err := ledger.GetJSON(ctx, txn, e.claimKey(id), vc); err != nil {
			return errors.Wrapf(err, "credential %s", id)
		}

		vc.Status = StatusRevoked

		return ledger.PutJSON(ctx, txn, e.claimKey(id), vc)
	})
	if err != nil {
		return err
	}

	logging.WithField("credential", id).Info("credential revoked")

	return nil
}
