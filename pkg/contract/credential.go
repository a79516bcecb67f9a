package contract

import (
	"context"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/tcfw/agritrace/pkg/credential"
	"github.com/tcfw/agritrace/pkg/validation"
)

func credentials(ctx contractapi.TransactionContextInterface, set Settings) (*credential.Engine, error) {
	s, err := open(ctx)
	if err != nil {
		return nil, err
	}
	return s.credentials(set)
}

// parseDate accepts RFC3339 or a bare date.
func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, validation.Invalidf("expirationDate is required")
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}

	return time.Time{}, validation.Invalidf("unrecognised date %q", v)
}

type AccessContract struct {
	contractapi.Contract
	settings Settings
}

func NewAccessContract(set Settings) *AccessContract {
	c := &AccessContract{settings: set}
	c.Name = "access"
	return c
}

func (c *AccessContract) CreateCredential(ctx contractapi.TransactionContextInterface, did string, permissions []string, expirationDate string, issuer string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	exp, err := parseDate(expirationDate)
	if err != nil {
		return "", err
	}

	vc, err := e.IssueAccess(context.Background(), did, permissions, exp, issuer)
	if err != nil {
		return "", err
	}

	return toJSON(vc)
}

func (c *AccessContract) VerifyCredential(ctx contractapi.TransactionContextInterface, did string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	vc, err := e.VerifyAccess(context.Background(), did)
	if err != nil {
		return "", err
	}

	return toJSON(vc)
}

func (c *AccessContract) RevokeCredential(ctx contractapi.TransactionContextInterface, did string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	if err := e.RevokeAccess(context.Background(), did); err != nil {
		return "", err
	}

	return "Credential for DID " + did + " has been revoked", nil
}

type RoleContract struct {
	contractapi.Contract
	settings Settings
}

func NewRoleContract(set Settings) *RoleContract {
	c := &RoleContract{settings: set}
	c.Name = "role"
	return c
}

func (c *RoleContract) CreateRoleCredential(ctx contractapi.TransactionContextInterface, did string, roles []string, issuedBy string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	vc, err := e.IssueRole(context.Background(), did, roles, issuedBy)
	if err != nil {
		return "", err
	}

	return toJSON(vc)
}

func (c *RoleContract) VerifyRoleCredential(ctx contractapi.TransactionContextInterface, did string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	vc, err := e.VerifyRole(context.Background(), did)
	if err != nil {
		return "", err
	}

	return toJSON(vc)
}

func (c *RoleContract) RevokeRoleCredential(ctx contractapi.TransactionContextInterface, did string, reason string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	if err := e.RevokeRole(context.Background(), did, reason); err != nil {
		return "", err
	}

	return "Role credential for DID " + did + " has been revoked: " + reason, nil
}

type ClaimContract struct {
	contractapi.Contract
	settings Settings
}

func NewClaimContract(set Settings) *ClaimContract {
	c := &ClaimContract{settings: set}
	c.Name = "claim"
	return c
}

func (c *ClaimContract) IssueCredential(ctx contractapi.TransactionContextInterface, credentialID, holderID, claims string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	vc, err := e.IssueClaim(context.Background(), credentialID, holderID, claims)
	if err != nil {
		return "", err
	}

	return toJSON(vc)
}

func (c *ClaimContract) ReadCredential(ctx contractapi.TransactionContextInterface, credentialID string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	vc, err := e.ReadClaim(context.Background(), credentialID)
	if err != nil {
		return "", err
	}

	return toJSON(vc)
}

func (c *ClaimContract) RevokeCredential(ctx contractapi.TransactionContextInterface, credentialID string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	if err := e.RevokeClaim(context.Background(), credentialID); err != nil {
		return "", err
	}

	return "Credential " + credentialID + " revoked", nil
}
