// Package contract exposes every ledger operation as a Fabric chaincode
// transaction. Arguments are positional strings or JSON arrays and
// results are JSON strings.
package contract

import (
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/pkg/errors"

	fabric "github.com/tcfw/agritrace/internal/ledger"
	"github.com/tcfw/agritrace/pkg/compliance"
	"github.com/tcfw/agritrace/pkg/credential"
	"github.com/tcfw/agritrace/pkg/did"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/provenance"
)

// Settings are shared by every contract in the chaincode.
type Settings struct {
	Keyspace  ledger.Keyspace
	Authority string
	Policy    did.CertificatePolicy
}

func (s Settings) keyspace() ledger.Keyspace {
	if s.Keyspace == nil {
		return ledger.TypedKeys{}
	}
	return s.Keyspace
}

func (s Settings) authority() string {
	if s.Authority == "" {
		return compliance.DefaultAuthority
	}
	return s.Authority
}

// services are rebuilt for every invocation around that invocation's stub.
type services struct {
	store *fabric.FabricStore
}

func open(ctx contractapi.TransactionContextInterface) (*services, error) {
	stub := ctx.GetStub()
	if stub == nil {
		return nil, errors.New("no chaincode stub")
	}

	return &services{store: fabric.NewFabricStore(stub)}, nil
}

func (s *services) registry(set Settings) (*did.Registry, error) {
	return did.NewRegistry(s.store,
		did.WithKeyspace(set.keyspace()),
		did.WithClock(s.store.Now),
		did.WithCertificatePolicy(set.Policy),
	)
}

func (s *services) credentials(set Settings) (*credential.Engine, error) {
	return credential.NewEngine(s.store,
		credential.WithKeyspace(set.keyspace()),
		credential.WithClock(s.store.Now),
	)
}

func (s *services) graph(set Settings) (*provenance.Graph, error) {
	return provenance.NewGraph(s.store, provenance.WithKeyspace(set.keyspace()))
}

func (s *services) workflow(set Settings) (*compliance.Workflow, error) {
	creds, err := s.credentials(set)
	if err != nil {
		return nil, err
	}

	return compliance.NewWorkflow(s.store, creds,
		compliance.WithKeyspace(set.keyspace()),
		compliance.WithAuthority(set.authority()),
		compliance.WithClock(s.store.Now),
	)
}

func toJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encoding result")
	}

	return string(b), nil
}

// All returns every contract sharing set.
func All(set Settings) []contractapi.ContractInterface {
	return []contractapi.ContractInterface{
		NewIdentityContract(set),
		NewLinkContract(set),
		NewAccessContract(set),
		NewRoleContract(set),
		NewClaimContract(set),
		NewTokenContract(set),
		NewTraceabilityContract(set),
		NewQualityContract(set),
	}
}
