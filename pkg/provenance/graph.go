package provenance

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

var (
	ErrDuplicateToken = errors.WithMessage(ledger.ErrAlreadyExists, "token")
	ErrNotAParent     = errors.New("not a parent token")
	ErrBrokenLink     = errors.New("broken parent/child link")
)

type Option func(*Graph) error

func WithKeyspace(ks ledger.Keyspace) Option {
	return func(g *Graph) error {
		g.keys = ks
		return nil
	}
}

// Graph records tokenized goods as parents (harvests) with children
// (products) and tracks their ownership.
type Graph struct {
	ledger ledger.Ledger
	keys   ledger.Keyspace
}

func NewGraph(l ledger.Ledger, opts ...Option) (*Graph, error) {
	g := &Graph{
		ledger: l,
		keys:   ledger.TypedKeys{},
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

type ParentRequest struct {
	ID                 string `json:"id" validate:"required"`
	Owner              string `json:"owner" validate:"required"`
	Name               string `json:"name"`
	Category           string `json:"category"`
	Description        string `json:"description"`
	Metadata           string `json:"metadata"`
	OrganicCertificate string `json:"organicCertificate"`
}

type ChildRequest struct {
	ID       string          `json:"id" validate:"required"`
	ParentID string          `json:"parentId" validate:"required"`
	Owner    string          `json:"owner" validate:"required"`
	QRCode   string          `json:"qrcode"`
	Metadata json.RawMessage `json:"metadata" validate:"required,jsonobject"`
}

func (g *Graph) key(id string) string {
	return g.keys.Key(ledger.KindToken, id)
}

func (g *Graph) get(ctx context.Context, txn ledger.Txn, id string) (Token, error) {
	b, err := txn.Get(ctx, g.key(id))
	if err != nil {
		return nil, errors.Wrapf(err, "token %s", id)
	}

	return decodeToken(b)
}

func (g *Graph) CreateParent(ctx context.Context, req ParentRequest) (*ParentToken, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	p := &ParentToken{
		Common: Common{
			ID:          req.ID,
			Owner:       req.Owner,
			Interactors: []string{req.Owner},
		},
		Type:               TypeParent,
		Name:               req.Name,
		Category:           req.Category,
		Description:        req.Description,
		Metadata:           req.Metadata,
		OrganicCertificate: req.OrganicCertificate,
		Children:           []string{},
	}

	err := g.ledger.Update(ctx, func(txn ledger.Txn) error {
		exists, err := ledger.Exists(ctx, txn, g.key(req.ID))
		if err != nil {
			return err
		}
		if exists {
			return errors.Wrap(ErrDuplicateToken, req.ID)
		}

		return ledger.PutJSON(ctx, txn, g.key(req.ID), p)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{"token": req.ID, "owner": req.Owner}).Info("parent token created")

	return p, nil
}

// CreateChild writes the child and appends it to its parent in one
// transaction.
func (g *Graph) CreateChild(ctx context.Context, req ChildRequest) (*ChildToken, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	c := &ChildToken{
		Common: Common{
			ID:          req.ID,
			Owner:       req.Owner,
			Interactors: []string{req.Owner},
		},
		Type:     TypeChild,
		ParentID: req.ParentID,
		QRCode:   req.QRCode,
		Metadata: req.Metadata,
	}

	err := g.ledger.Update(ctx, func(txn ledger.Txn) error {
		exists, err := ledger.Exists(ctx, txn, g.key(req.ID))
		if err != nil {
			return err
		}
		if exists {
			return errors.Wrap(ErrDuplicateToken, req.ID)
		}

		t, err := g.get(ctx, txn, req.ParentID)
		if err != nil {
			return errors.Wrap(err, "parent")
		}

		parent, ok := t.(*ParentToken)
		if !ok {
			return errors.Wrapf(ledger.ErrNotFound, "parent token %s", req.ParentID)
		}

		parent.Children = append(parent.Children, req.ID)

		if err := ledger.PutJSON(ctx, txn, g.key(req.ParentID), parent); err != nil {
			return err
		}

		return ledger.PutJSON(ctx, txn, g.key(req.ID), c)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{
		"token":  req.ID,
		"parent": req.ParentID,
		"owner":  req.Owner,
	}).Info("child token created")

	return c, nil
}

// Transfer moves either kind of token to newOwner.
func (g *Graph) Transfer(ctx context.Context, id string, newOwner string) (Token, error) {
	if newOwner == "" {
		return nil, validation.Invalidf("new owner is required")
	}

	var t Token

	err := g.ledger.Update(ctx, func(txn ledger.Txn) error {
		var err error
		t, err = g.get(ctx, txn, id)
		if err != nil {
			return err
		}

		t.common().transfer(newOwner)

		return ledger.PutJSON(ctx, txn, g.key(id), t)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{"token": id, "owner": newOwner}).Info("token transferred")

	return t, nil
}

func (g *Graph) Read(ctx context.Context, id string) (Token, error) {
	var t Token

	err := g.ledger.View(ctx, func(txn ledger.Txn) error {
		var err error
		t, err = g.get(ctx, txn, id)
		return err
	})

	return t, err
}

func (g *Graph) Children(ctx context.Context, parentID string) ([]string, error) {
	t, err := g.Read(ctx, parentID)
	if err != nil {
		return nil, err
	}

	p, ok := t.(*ParentToken)
	if !ok {
		return nil, errors.Wrap(ErrNotAParent, parentID)
	}

	return p.Children, nil
}

func (g *Graph) Interactors(ctx context.Context, id string) ([]string, error) {
	t, err := g.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	return t.common().Interactors, nil
}
