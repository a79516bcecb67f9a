package provenance

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type Type string

const (
	TypeParent Type = "parent"
	TypeChild  Type = "child"
)

// Common holds what every token carries: an owner and the ordered set of
// every owner it has had.
type Common struct {
	ID          string   `json:"id"`
	Owner       string   `json:"owner"`
	Interactors []string `json:"interactors"`
}

func (c *Common) common() *Common { return c }

// transfer changes the owner, recording newOwner as an interactor once.
func (c *Common) transfer(newOwner string) {
	c.Owner = newOwner

	for _, i := range c.Interactors {
		if i == newOwner {
			return
		}
	}

	c.Interactors = append(c.Interactors, newOwner)
}

// Token is either a *ParentToken or a *ChildToken.
type Token interface {
	Kind() Type
	common() *Common
}

// ParentToken represents a harvest lot. Children only ever grow.
type ParentToken struct {
	Common
	Type               Type     `json:"type"`
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Description        string   `json:"description"`
	Metadata           string   `json:"metadata"`
	OrganicCertificate string   `json:"organicCertificate"`
	Children           []string `json:"children"`
}

func (p *ParentToken) Kind() Type { return TypeParent }

// ChildToken represents a product derived from a harvest lot.
type ChildToken struct {
	Common
	Type     Type            `json:"type"`
	ParentID string          `json:"parentId"`
	QRCode   string          `json:"qrcode"`
	Metadata json.RawMessage `json:"metadata"`
}

func (c *ChildToken) Kind() Type { return TypeChild }

func decodeToken(b []byte) (Token, error) {
	peek := struct {
		Type Type `json:"type"`
	}{}

	if err := json.Unmarshal(b, &peek); err != nil {
		return nil, errors.Wrap(err, "decoding token")
	}

	var t Token

	switch peek.Type {
	case TypeParent:
		t = &ParentToken{}
	case TypeChild:
		t = &ChildToken{}
	default:
		return nil, errors.Errorf("unknown token type %q", peek.Type)
	}

	if err := json.Unmarshal(b, t); err != nil {
		return nil, errors.Wrap(err, "decoding token")
	}

	return t, nil
}
