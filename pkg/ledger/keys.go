package ledger

import (
	"strings"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindDID              Kind = "did"
	KindAccessCredential Kind = "vc-access"
	KindRoleCredential   Kind = "vc-role"
	KindClaimCredential  Kind = "vc-claim"
	KindToken            Kind = "token"
	KindTraceability     Kind = "trace"
	KindStandard         Kind = "standard"
	KindQualityCert      Kind = "qcert"
)

const kindSep = ':'

// Keyspace maps an entity kind and its natural identifier onto a ledger key.
type Keyspace interface {
	Key(Kind, string) string
	Name() string
}

// TypedKeys prefixes every key with its kind so that different entity
// kinds sharing an identifier never collide.
type TypedKeys struct{}

func (TypedKeys) Key(k Kind, id string) string {
	b := strings.Builder{}
	b.Grow(len(k) + len(id) + 1)
	b.WriteString(string(k))
	b.WriteByte(kindSep)
	b.WriteString(id)
	return b.String()
}

func (TypedKeys) Name() string { return "typed" }

// FlatKeys stores entities under their bare identifier, the layout used
// by untyped chaincode deployments. Callers own the risk of collisions
// across kinds.
type FlatKeys struct{}

func (FlatKeys) Key(_ Kind, id string) string { return id }

func (FlatKeys) Name() string { return "flat" }

func ParseKeyspace(name string) (Keyspace, error) {
	switch strings.ToLower(name) {
	case "", "typed":
		return TypedKeys{}, nil
	case "flat":
		return FlatKeys{}, nil
	default:
		return nil, errors.Errorf("unknown key scheme %q", name)
	}
}
