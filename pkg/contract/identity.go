package contract

import (
	"context"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/tcfw/agritrace/pkg/did"
)

type IdentityContract struct {
	contractapi.Contract
	settings Settings
}

func NewIdentityContract(set Settings) *IdentityContract {
	c := &IdentityContract{settings: set}
	c.Name = "identity"
	return c
}

func (c *IdentityContract) registry(ctx contractapi.TransactionContextInterface) (*did.Registry, error) {
	s, err := open(ctx)
	if err != nil {
		return nil, err
	}
	return s.registry(c.settings)
}

func (c *IdentityContract) CreateDID(ctx contractapi.TransactionContextInterface, id, publicKey, metadata, x509Cert, role, organisation string) (string, error) {
	r, err := c.registry(ctx)
	if err != nil {
		return "", err
	}

	doc, err := r.CreateDID(context.Background(), did.CreateRequest{
		DID:          id,
		PublicKey:    publicKey,
		Metadata:     metadata,
		X509Cert:     x509Cert,
		Role:         role,
		Organisation: organisation,
	})
	if err != nil {
		return "", err
	}

	return toJSON(doc)
}

func (c *IdentityContract) ReadDID(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	r, err := c.registry(ctx)
	if err != nil {
		return "", err
	}

	doc, err := r.ReadDID(context.Background(), id)
	if err != nil {
		return "", err
	}

	return toJSON(doc)
}

func (c *IdentityContract) UpdateDID(ctx contractapi.TransactionContextInterface, id, x509Cert string) (string, error) {
	r, err := c.registry(ctx)
	if err != nil {
		return "", err
	}

	doc, err := r.UpdateDID(context.Background(), id, x509Cert)
	if err != nil {
		return "", err
	}

	return toJSON(doc)
}

// LinkContract binds certificates to DIDs once.
type LinkContract struct {
	contractapi.Contract
	settings Settings
}

func NewLinkContract(set Settings) *LinkContract {
	c := &LinkContract{settings: set}
	c.Name = "link"
	return c
}

func (c *LinkContract) linker(ctx contractapi.TransactionContextInterface) (*did.Linker, error) {
	s, err := open(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.registry(c.settings)
	if err != nil {
		return nil, err
	}

	return did.NewLinker(r), nil
}

func (c *LinkContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	return nil
}

func (c *LinkContract) LinkCertificateToDID(ctx contractapi.TransactionContextInterface, id, x509Cert string) (string, error) {
	l, err := c.linker(ctx)
	if err != nil {
		return "", err
	}

	res, err := l.Link(context.Background(), id, x509Cert)
	if err != nil {
		return "", err
	}

	return toJSON(res)
}

// GetDIDEntry returns "null" when the DID does not exist.
func (c *LinkContract) GetDIDEntry(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	l, err := c.linker(ctx)
	if err != nil {
		return "", err
	}

	doc, err := l.Entry(context.Background(), id)
	if err != nil {
		return "", err
	}

	return toJSON(doc)
}
