package credential

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

// RoleCredential asserts organisational roles. It has no expiry.
type RoleCredential struct {
	DID           string   `json:"did"`
	Roles         []string `json:"roles"`
	IssuedBy      string   `json:"issuedBy"`
	Revoked       bool     `json:"revoked"`
	RevokedReason *string  `json:"revokedReason"`
}

type roleRequest struct {
	DID      string   `json:"did" validate:"required"`
	Roles    []string `json:"roles" validate:"required,min=1"`
	IssuedBy string   `json:"issuedBy" validate:"required"`
}

func (e *Engine) roleKey(did string) string {
	return e.keys.Key(ledger.KindRoleCredential, did)
}

func (e *Engine) IssueRole(ctx context.Context, did string, roles []string, issuedBy string) (*RoleCredential, error) {
	if err := validation.Struct(&roleRequest{DID: did, Roles: roles, IssuedBy: issuedBy}); err != nil {
		return nil, err
	}

	vc := &RoleCredential{
		DID:      did,
		Roles:    roles,
		IssuedBy: issuedBy,
	}

	err := e.ledger.Update(ctx, func(txn ledger.Txn) error {
		existing := &RoleCredential{}
		err := ledger.GetJSON(ctx, txn, e.roleKey(did), existing)
		if err == nil && existing.Revoked {
			return errors.Wrapf(ErrRevoked, "role credential for DID %s", did)
		} else if err != nil && !errors.Is(err, ledger.ErrNotFound) {
			return err
		}

		return ledger.PutJSON(ctx, txn, e.roleKey(did), vc)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{"did": did, "issuedBy": issuedBy}).Info("role credential issued")

	return vc, nil
}

func (e *Engine) VerifyRole(ctx context.Context, did string) (*RoleCredential, error) {
	vc := &RoleCredential{}

	err := e.ledger.View(ctx, func(txn ledger.Txn) error {
		return ledger.GetJSON(ctx, txn, e.roleKey(did), vc)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "role credential for DID %s", did)
	}

	if vc.Revoked {
		reason := ""
		if vc.RevokedReason != nil {
			reason = *vc.RevokedReason
		}
		return nil, errors.Wrapf(ErrRevoked, "role credential for DID %s: %s", did, reason)
	}

	return vc, nil
}

type revokeRoleRequest struct {
	DID    string `json:"did" validate:"required"`
	Reason string `json:"reason" validate:"notblank"`
}

func (e *Engine) RevokeRole(ctx context.Context, did string, reason string) error {
	if err := validation.Struct(&revokeRoleRequest{DID: did, Reason: reason}); err != nil {
		return err
	}

	err := e.ledger.Update(ctx, func(txn ledger.Txn) error {
		vc := &RoleCredential{}
		if err := ledger.GetJSON(ctx, txn, e.roleKey(did), vc); err != nil {
			return errors.Wrapf(err, "role credential for DID %s", did)
		}

		vc.Revoked = true
		vc.RevokedReason = &reason

		return ledger.PutJSON(ctx, txn, e.roleKey(did), vc)
	})
	if err != nil {
		return err
	}

	logging.WithFields(logging.Fields{"did": did, "reason": reason}).Info("role credential revoked")

	return nil
}
