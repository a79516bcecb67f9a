package contract

import (
	"context"
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/tcfw/agritrace/pkg/provenance"
)

type TokenContract struct {
	contractapi.Contract
	settings Settings
}

func NewTokenContract(set Settings) *TokenContract {
	c := &TokenContract{settings: set}
	c.Name = "token"
	return c
}

func (c *TokenContract) graph(ctx contractapi.TransactionContextInterface) (*provenance.Graph, error) {
	s, err := open(ctx)
	if err != nil {
		return nil, err
	}
	return s.graph(c.settings)
}

func (c *TokenContract) CreateHarvestNFT(ctx contractapi.TransactionContextInterface, id, owner, name, category, description, metadata, organicCertificate string) (string, error) {
	g, err := c.graph(ctx)
	if err != nil {
		return "", err
	}

	p, err := g.CreateParent(context.Background(), provenance.ParentRequest{
		ID:                 id,
		Owner:              owner,
		Name:               name,
		Category:           category,
		Description:        description,
		Metadata:           metadata,
		OrganicCertificate: organicCertificate,
	})
	if err != nil {
		return "", err
	}

	return toJSON(p)
}

func (c *TokenContract) CreateProductNFT(ctx contractapi.TransactionContextInterface, id, parentID, owner, qrcode, metadata string) (string, error) {
	g, err := c.graph(ctx)
	if err != nil {
		return "", err
	}

	ch, err := g.CreateChild(context.Background(), provenance.ChildRequest{
		ID:       id,
		ParentID: parentID,
		Owner:    owner,
		QRCode:   qrcode,
		Metadata: json.RawMessage(metadata),
	})
	if err != nil {
		return "", err
	}

	return toJSON(ch)
}

func (c *TokenContract) TransferNFT(ctx contractapi.TransactionContextInterface, id, newOwner string) (string, error) {
	g, err := c.graph(ctx)
	if err != nil {
		return "", err
	}

	t, err := g.Transfer(context.Background(), id, newOwner)
	if err != nil {
		return "", err
	}

	return toJSON(t)
}

func (c *TokenContract) ReadNFT(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	g, err := c.graph(ctx)
	if err != nil {
		return "", err
	}

	t, err := g.Read(context.Background(), id)
	if err != nil {
		return "", err
	}

	return toJSON(t)
}

func (c *TokenContract) GetChildren(ctx contractapi.TransactionContextInterface, parentID string) ([]string, error) {
	g, err := c.graph(ctx)
	if err != nil {
		return nil, err
	}

	return g.Children(context.Background(), parentID)
}

func (c *TokenContract) GetInteractors(ctx contractapi.TransactionContextInterface, id string) ([]string, error) {
	g, err := c.graph(ctx)
	if err != nil {
		return nil, err
	}

	return g.Interactors(context.Background(), id)
}
