package main

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/tcfw/agritrace/internal/config"
	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/contract"
	"github.com/tcfw/agritrace/pkg/did"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		logging.WithError(err).Fatal("loading config")
	}

	policy, err := did.ParseCertificatePolicy(cfg.Identity().CertificatePolicy)
	if err != nil {
		logging.WithError(err).Fatal("certificate policy")
	}

	cc, err := contractapi.NewChaincode(contract.All(contract.Settings{
		Keyspace:  cfg.Ledger().Keyspace,
		Authority: cfg.Compliance().Authority,
		Policy:    policy,
	})...)
	if err != nil {
		logging.WithError(err).Fatal("creating chaincode")
	}

	if err := cc.Start(); err != nil {
		logging.WithError(err).Fatal("starting chaincode")
	}
}
