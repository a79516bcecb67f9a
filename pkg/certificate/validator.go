package certificate

import (
	"crypto/x509"
	"encoding/pem"
	"time"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
)

var (
	ErrInvalid = errors.New("invalid X.509 certificate")
)

// Validator decides whether a PEM certificate may be bound to an identity.
type Validator interface {
	Validate(cert string) bool
}

// ValidatorFunc adapts a plain function to a Validator.
type ValidatorFunc func(cert string) bool

func (f ValidatorFunc) Validate(cert string) bool {
	return f(cert)
}

type Option func(*X509Validator) error

func WithClock(now func() time.Time) Option {
	return func(v *X509Validator) error {
		if now == nil {
			return errors.New("nil clock")
		}
		v.now = now
		return nil
	}
}

var _ Validator = (*X509Validator)(nil)

// X509Validator accepts a certificate when it parses and the current time
// falls inside its validity window. Chains of trust are not checked.
type X509Validator struct {
	now func() time.Time
}

func NewValidator(opts ...Option) (*X509Validator, error) {
	v := &X509Validator{now: time.Now}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func (v *X509Validator) Validate(cert string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	c, err := Parse(cert)
	if err != nil {
		logging.WithError(err).Debug("rejecting certificate")
		return false
	}

	now := v.now()
	if now.Before(c.NotBefore) || now.After(c.NotAfter) {
		logging.Entry().WithFields(logging.Fields{
			"subject":    c.Subject.String(),
			"not_before": c.NotBefore,
			"not_after":  c.NotAfter,
		}).Debug("certificate expired or not yet valid")
		return false
	}

	return true
}

// Parse decodes the first PEM block of cert as an X.509 certificate.
func Parse(cert string) (*x509.Certificate, error) {
	b, _ := pem.Decode([]byte(cert))
	if b == nil {
		return nil, errors.New("no PEM block found")
	}

	if b.Type != "CERTIFICATE" {
		return nil, errors.Errorf("unexpected PEM block %s", b.Type)
	}

	c, err := x509.ParseCertificate(b.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "parsing certificate")
	}

	return c, nil
}
