package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Identity struct {
	CertificatePolicy string
}

type Compliance struct {
	Authority string
}

const (
	Cfg_identity_certificatePolicy = "identity.certificate_policy"
	Cfg_compliance_authority       = "compliance.authority"

	PolicyRotate   = "rotate"
	PolicyBindOnce = "bind-once"

	DefaultAuthority = "Quality Insurance Organisation"
)

var (
	serviceDefaults = map[string]interface{}{
		Cfg_identity_certificatePolicy: PolicyRotate,
		Cfg_compliance_authority:       DefaultAuthority,
	}
)

func init() {
	for k, v := range serviceDefaults {
		viper.SetDefault(k, v)
	}
}

func buildIdentityConfig() (*Identity, error) {
	c := &Identity{
		CertificatePolicy: viper.GetString(Cfg_identity_certificatePolicy),
	}

	switch c.CertificatePolicy {
	case PolicyRotate, PolicyBindOnce:
	default:
		return nil, errors.Errorf("unknown certificate policy %q", c.CertificatePolicy)
	}

	return c, nil
}

func buildComplianceConfig() (*Compliance, error) {
	c := &Compliance{
		Authority: viper.GetString(Cfg_compliance_authority),
	}

	if c.Authority == "" {
		return nil, errors.New("compliance authority must be set")
	}

	return c, nil
}
