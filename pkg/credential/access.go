package credential

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

// AccessCredential grants its holder permissions until ExpirationDate.
type AccessCredential struct {
	DID            string   `json:"did"`
	Permissions    []string `json:"permissions"`
	ExpirationDate int64    `json:"expirationDate"`
	Issuer         string   `json:"issuer,omitempty"`
	Revoked        bool     `json:"revoked"`
}

// ExpiresAt converts the stored unix millisecond expiry.
func (c *AccessCredential) ExpiresAt() time.Time {
	return time.UnixMilli(c.ExpirationDate)
}

type accessRequest struct {
	DID         string   `json:"did" validate:"required"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
	Issuer      string   `json:"issuer" validate:"required"`
}

func (e *Engine) accessKey(did string) string {
	return e.keys.Key(ledger.KindAccessCredential, did)
}

// IssueAccess writes a fresh access credential for did. A revoked
// credential is never replaced.
func (e *Engine) IssueAccess(ctx context.Context, did string, permissions []string, expirationDate time.Time, issuer string) (*AccessCredential, error) {
	if err := validation.Struct(&accessRequest{DID: did, Permissions: permissions, Issuer: issuer}); err != nil {
		return nil, err
	}

	if expirationDate.IsZero() {
		return nil, validation.Invalidf("expirationDate is required")
	}

	if expirationDate.UnixMilli() <= e.now().UnixMilli() {
		return nil, validation.Invalidf("expiration date must be in the future")
	}

	vc := &AccessCredential{
		DID:            did,
		Permissions:    permissions,
		ExpirationDate: expirationDate.UnixMilli(),
		Issuer:         issuer,
	}

	err := e.ledger.Update(ctx, func(txn ledger.Txn) error {
		existing := &AccessCredential{}
		err := ledger.GetJSON(ctx, txn, e.accessKey(did), existing)
		if err == nil && existing.Revoked {
			return errors.Wrapf(ErrRevoked, "access credential for DID %s", did)
		} else if err != nil && !errors.Is(err, ledger.ErrNotFound) {
			return err
		}

		return ledger.PutJSON(ctx, txn, e.accessKey(did), vc)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{
		"did":     did,
		"issuer":  issuer,
		"expires": vc.ExpiresAt().UTC(),
	}).Info("access credential issued")

	return vc, nil
}

// VerifyAccess returns the credential if it is neither revoked nor expired.
// An expired credential is revoked as part of the call, which then fails
// with ErrExpired; later calls fail with ErrRevoked.
func (e *Engine) VerifyAccess(ctx context.Context, did string) (*AccessCredential, error) {
	vc := &AccessCredential{}
	expired := false

	err := e.ledger.Update(ctx, func(txn ledger.Txn) error {
		if err := ledger.GetJSON(ctx, txn, e.accessKey(did), vc); err != nil {
			return errors.Wrapf(err, "access credential for DID %s", did)
		}

		if vc.Revoked {
			return errors.Wrapf(ErrRevoked, "access credential for DID %s", did)
		}

		if vc.ExpirationDate <= e.now().UnixMilli() {
			vc.Revoked = true
			expired = true
			return ledger.PutJSON(ctx, txn, e.accessKey(did), vc)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired {
		logging.WithField("did", did).Info("access credential expired and revoked")
		return nil, errors.Wrapf(ErrExpired, "access credential for DID %s has been revoked", did)
	}

	return vc, nil
}

func (e *Engine) RevokeAccess(ctx context.Context, did string) error {
	err := e.ledger.Update(ctx, func(txn ledger.Txn) error {
		vc := &AccessCredential{}
		if err := ledger.GetJSON(ctx, txn, e.accessKey(did), vc); err != nil {
			return errors.Wrapf(err, "access credential for DID %s", did)
		}

		vc.Revoked = true

		return ledger.PutJSON(ctx, txn, e.accessKey(did), vc)
	})
	if err != nil {
		return err
	}

	logging.WithField("did", did).Info("access credential revoked")

	return nil
}
