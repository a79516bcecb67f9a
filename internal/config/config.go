package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tcfw/agritrace/internal/utils/logging"
)

const (
	Cfg_verbose   = "verbose"
	Cfg_logFormat = "log.format"
)

var (
	defaults = map[string]interface{}{
		Cfg_verbose:   false,
		Cfg_logFormat: "text",
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("agritrace")
	viper.AddConfigPath("/etc/agritrace/")
	viper.AddConfigPath("$HOME/.agritrace")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("AGRITRACE")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logging.Entry().Debug("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return build()
}

func build() (*Config, error) {
	var err error
	c := &Config{}

	if err := logging.SetFormat(viper.GetString(Cfg_logFormat)); err != nil {
		return nil, errors.Wrap(err, "log config")
	}

	if viper.GetBool(Cfg_verbose) {
		logging.SetLevel(logrus.DebugLevel)
		logging.Entry().WithField("level", "debug").Debug("setting log level")
	}

	c.ledger, err = buildLedgerConfig()
	if err != nil {
		return nil, errors.Wrap(err, "ledger config")
	}

	c.identity, err = buildIdentityConfig()
	if err != nil {
		return nil, errors.Wrap(err, "identity config")
	}

	c.compliance, err = buildComplianceConfig()
	if err != nil {
		return nil, errors.Wrap(err, "compliance config")
	}

	return c, nil
}

type Config struct {
	ledger     *Ledger
	identity   *Identity
	compliance *Compliance
}

func (c *Config) Ledger() *Ledger {
	return c.ledger
}

func (c *Config) Identity() *Identity {
	return c.identity
}

func (c *Config) Compliance() *Compliance {
	return c.compliance
}
