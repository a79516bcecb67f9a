package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tcfw/agritrace/pkg/ledger"
)

type Ledger struct {
	Backend  string
	Path     string
	ChainID  string
	Keyspace ledger.Keyspace
}

const (
	Cfg_ledger_backend = "ledger.backend"
	Cfg_ledger_path    = "ledger.path"
	Cfg_ledger_keys    = "ledger.keys"
	Cfg_ledger_chainID = "ledger.chain_id"
)

var (
	ledgerDefaults = map[string]interface{}{
		Cfg_ledger_backend: "pebble",
		Cfg_ledger_path:    defaultLedgerPath(),
		Cfg_ledger_keys:    "typed",
		Cfg_ledger_chainID: "agritrace-local",
	}
)

func init() {
	for k, v := range ledgerDefaults {
		viper.SetDefault(k, v)
	}
}

func defaultLedgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agritrace"
	}

	return filepath.Join(home, ".agritrace", "ledger")
}

func buildLedgerConfig() (*Ledger, error) {
	ks, err := ledger.ParseKeyspace(viper.GetString(Cfg_ledger_keys))
	if err != nil {
		return nil, err
	}

	c := &Ledger{
		Backend:  viper.GetString(Cfg_ledger_backend),
		Path:     viper.GetString(Cfg_ledger_path),
		ChainID:  viper.GetString(Cfg_ledger_chainID),
		Keyspace: ks,
	}

	return c, nil
}
