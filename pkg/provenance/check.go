package provenance

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/pkg/ledger"
)

// CheckLinks verifies the parent/child links around id. For a parent every
// listed child must exist, point back at it and be listed exactly once.
// For a child its parent must list it exactly once.
func (g *Graph) CheckLinks(ctx context.Context, id string) error {
	return g.ledger.View(ctx, func(txn ledger.Txn) error {
		t, err := g.get(ctx, txn, id)
		if err != nil {
			return err
		}

		switch tt := t.(type) {
		case *ParentToken:
			return g.checkParent(ctx, txn, tt)
		case *ChildToken:
			pt, err := g.get(ctx, txn, tt.ParentID)
			if err != nil {
				return errors.Wrapf(ErrBrokenLink, "child %s: parent %s: %s", tt.ID, tt.ParentID, err)
			}
			p, ok := pt.(*ParentToken)
			if !ok {
				return errors.Wrapf(ErrBrokenLink, "child %s: %s is not a parent", tt.ID, tt.ParentID)
			}
			if n := count(p.Children, tt.ID); n != 1 {
				return errors.Wrapf(ErrBrokenLink, "child %s listed %d times by %s", tt.ID, n, p.ID)
			}
		}

		return nil
	})
}

func (g *Graph) checkParent(ctx context.Context, txn ledger.Txn, p *ParentToken) error {
	seen := make(map[string]struct{}, len(p.Children))

	for _, cid := range p.Children {
		if _, ok := seen[cid]; ok {
			return errors.Wrapf(ErrBrokenLink, "parent %s lists %s more than once", p.ID, cid)
		}
		seen[cid] = struct{}{}

		t, err := g.get(ctx, txn, cid)
		if err != nil {
			return errors.Wrapf(ErrBrokenLink, "parent %s: child %s: %s", p.ID, cid, err)
		}

		c, ok := t.(*ChildToken)
		if !ok || c.ParentID != p.ID {
			return errors.Wrapf(ErrBrokenLink, "parent %s: %s does not point back", p.ID, cid)
		}
	}

	return nil
}

func count(s []string, v string) int {
	n := 0
	for _, e := range s {
		if e == v {
			n++
		}
	}
	return n
}
