package contract

import (
	"context"
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/tcfw/agritrace/pkg/compliance"
	"github.com/tcfw/agritrace/pkg/validation"
)

func workflow(ctx contractapi.TransactionContextInterface, set Settings) (*compliance.Workflow, error) {
	s, err := open(ctx)
	if err != nil {
		return nil, err
	}
	return s.workflow(set)
}

type TraceabilityContract struct {
	contractapi.Contract
	settings Settings
}

func NewTraceabilityContract(set Settings) *TraceabilityContract {
	c := &TraceabilityContract{settings: set}
	c.Name = "traceability"
	return c
}

// CreateData records an observation. attributes is an optional JSON object
// of named measurements; pass an empty string for none.
func (c *TraceabilityContract) CreateData(ctx contractapi.TransactionContextInterface, id, did, dataType, value, additionalInfo, attributes string) (string, error) {
	w, err := workflow(ctx, c.settings)
	if err != nil {
		return "", err
	}

	req := compliance.RecordRequest{
		ID:             id,
		DID:            did,
		DataType:       dataType,
		Value:          value,
		AdditionalInfo: additionalInfo,
	}

	if attributes != "" {
		if err := json.Unmarshal([]byte(attributes), &req.Attributes); err != nil || req.Attributes == nil {
			return "", validation.Invalidf("attributes must be a JSON object")
		}
	}

	r, err := w.CreateRecord(context.Background(), req)
	if err != nil {
		return "", err
	}

	return toJSON(r)
}

func (c *TraceabilityContract) ReadData(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	w, err := workflow(ctx, c.settings)
	if err != nil {
		return "", err
	}

	r, err := w.ReadRecord(context.Background(), id)
	if err != nil {
		return "", err
	}

	return toJSON(r)
}

type QualityContract struct {
	contractapi.Contract
	settings Settings
}

func NewQualityContract(set Settings) *QualityContract {
	c := &QualityContract{settings: set}
	c.Name = "quality"
	return c
}

func (c *QualityContract) ReadTraceabilityData(ctx contractapi.TransactionContextInterface, productID, credentialRef string) (string, error) {
	w, err := workflow(ctx, c.settings)
	if err != nil {
		return "", err
	}

	r, err := w.ReadTraceabilityData(context.Background(), productID, credentialRef)
	if err != nil {
		return "", err
	}

	return toJSON(r)
}

func (c *QualityContract) VerifyCompliance(ctx contractapi.TransactionContextInterface, productID, standardID string) (string, error) {
	w, err := workflow(ctx, c.settings)
	if err != nil {
		return "", err
	}

	res, err := w.VerifyCompliance(context.Background(), productID, standardID)
	if err != nil {
		return "", err
	}

	return toJSON(res)
}

func (c *QualityContract) IssueQualityCertificate(ctx contractapi.TransactionContextInterface, productID, standardID, certificateID string) (string, error) {
	w, err := workflow(ctx, c.settings)
	if err != nil {
		return "", err
	}

	qc, err := w.IssueQualityCertificate(context.Background(), productID, standardID, certificateID)
	if err != nil {
		return "", err
	}

	return toJSON(qc)
}

func (c *QualityContract) RegisterStandard(ctx contractapi.TransactionContextInterface, standardID, standard string) (string, error) {
	w, err := workflow(ctx, c.settings)
	if err != nil {
		return "", err
	}

	s, err := w.RegisterStandard(context.Background(), standardID, []byte(standard))
	if err != nil {
		return "", err
	}

	return toJSON(s)
}

func (c *QualityContract) RequestVerifiableCredentialAccess(ctx contractapi.TransactionContextInterface, did string, permissions []string, expiryDate string) (string, error) {
	w, err := workflow(ctx, c.settings)
	if err != nil {
		return "", err
	}

	exp, err := parseDate(expiryDate)
	if err != nil {
		return "", err
	}

	vc, err := w.GrantAccess(context.Background(), did, permissions, exp)
	if err != nil {
		return "", err
	}

	return toJSON(vc)
}

func (c *QualityContract) RevokeVerifiableCredentialAccess(ctx contractapi.TransactionContextInterface, did string) (string, error) {
	e, err := credentials(ctx, c.settings)
	if err != nil {
		return "", err
	}

	if err := e.RevokeAccess(context.Background(), did); err != nil {
		return "", err
	}

	return "Verifiable Credential Access for " + did + " revoked.", nil
}
