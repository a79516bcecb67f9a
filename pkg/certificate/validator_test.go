package certificate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tcfw/agritrace/pkg/certificate"
	"github.com/tcfw/agritrace/pkg/certificate/certtest"
)

func TestValidateWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	v, err := certificate.NewValidator(certificate.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		notBefore time.Time
		notAfter  time.Time
		expect    bool
	}{
		{"inside", now.Add(-time.Hour), now.Add(time.Hour), true},
		{"expired", now.Add(-2 * time.Hour), now.Add(-time.Hour), false},
		{"not yet valid", now.Add(time.Hour), now.Add(2 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := certtest.Generate(t, tt.notBefore, tt.notAfter)
			assert.Equal(t, tt.expect, v.Validate(cert))
		})
	}
}

func TestValidateGarbage(t *testing.T) {
	v, err := certificate.NewValidator()
	if err != nil {
		t.Fatal(err)
	}

	assert.False(t, v.Validate(""))
	assert.False(t, v.Validate("not a certificate"))
	assert.False(t, v.Validate("-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n"))
}

func TestValidatorFunc(t *testing.T) {
	var v certificate.Validator = certificate.ValidatorFunc(func(string) bool { return true })
	assert.True(t, v.Validate("anything"))
}

func TestFingerprint(t *testing.T) {
	cert := certtest.Valid(t)

	fp, err := certificate.Fingerprint(cert)
	if err != nil {
		t.Fatal(err)
	}

	//base58btc prefix
	assert.True(t, strings.HasPrefix(fp, "z"))

	again, _ := certificate.Fingerprint(cert)
	assert.Equal(t, fp, again)

	other, _ := certificate.Fingerprint(certtest.Valid(t))
	assert.NotEqual(t, fp, other)

	_, err = certificate.Fingerprint("garbage")
	assert.Error(t, err)
}
