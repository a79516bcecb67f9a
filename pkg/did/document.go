package did

import (
	"github.com/multiformats/go-multibase"

	"github.com/tcfw/agritrace/pkg/did/w3cdid"
)

// Document is the ledger record binding a DID to its holder's key and
// X.509 certificate. Only X509Cert may change after creation.
type Document struct {
	DID          string `json:"did"`
	PublicKey    string `json:"publicKey"`
	Metadata     string `json:"metadata"`
	X509Cert     string `json:"x509Cert"`
	Role         string `json:"role"`
	Organisation string `json:"organisation"`
	CreatedAt    string `json:"createdAt"`
}

type CreateRequest struct {
	DID          string `json:"did" validate:"required"`
	PublicKey    string `json:"publicKey" validate:"required"`
	Metadata     string `json:"metadata" validate:"required"`
	X509Cert     string `json:"x509Cert" validate:"required"`
	Role         string `json:"role" validate:"required"`
	Organisation string `json:"organisation" validate:"required"`
}

// W3C renders the document as a W3C DID document. The public key is
// published as a verification method when it is multibase encoded.
func (d *Document) W3C() *w3cdid.Document {
	doc := &w3cdid.Document{
		Context: []string{w3cdid.ContextV1},
		ID:      d.DID,
	}

	enc, raw, err := multibase.Decode(d.PublicKey)
	if err != nil {
		return doc
	}

	vm := w3cdid.VerificationMethod{
		ID:         d.DID + "#key-1",
		Type:       w3cdid.Multikey,
		Controller: d.DID,
	}
	if enc == multibase.Base58BTC && len(raw) == 32 {
		vm.Type = w3cdid.Ed25519VerificationKey2018
	}
	vm.PublicKeyMultibase = d.PublicKey

	doc.VerificationMethod = []w3cdid.VerificationMethod{vm}
	doc.Authentication = []string{vm.ID}

	return doc
}
