package did

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/certificate"
	"github.com/tcfw/agritrace/pkg/did/w3cdid"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

// CertificatePolicy controls whether UpdateDID may replace a certificate
// that is already bound.
type CertificatePolicy int

const (
	PolicyRotate CertificatePolicy = iota
	PolicyBindOnce
)

func ParseCertificatePolicy(s string) (CertificatePolicy, error) {
	switch strings.ToLower(s) {
	case "", "rotate":
		return PolicyRotate, nil
	case "bind-once":
		return PolicyBindOnce, nil
	default:
		return 0, errors.Errorf("unknown certificate policy %q", s)
	}
}

type Option func(*Registry) error

func WithKeyspace(ks ledger.Keyspace) Option {
	return func(r *Registry) error {
		r.keys = ks
		return nil
	}
}

func WithValidator(v certificate.Validator) Option {
	return func(r *Registry) error {
		r.validator = v
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) error {
		r.now = now
		return nil
	}
}

func WithCertificatePolicy(p CertificatePolicy) Option {
	return func(r *Registry) error {
		r.policy = p
		return nil
	}
}

// Registry creates, reads and updates DID documents on the ledger.
type Registry struct {
	ledger    ledger.Ledger
	keys      ledger.Keyspace
	validator certificate.Validator
	now       func() time.Time
	policy    CertificatePolicy
}

func NewRegistry(l ledger.Ledger, opts ...Option) (*Registry, error) {
	r := &Registry{
		ledger: l,
		keys:   ledger.TypedKeys{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.validator == nil {
		v, err := certificate.NewValidator(certificate.WithClock(r.now))
		if err != nil {
			return nil, errors.Wrap(err, "creating certificate validator")
		}
		r.validator = v
	}

	return r, nil
}

func (r *Registry) key(did string) string {
	return r.keys.Key(ledger.KindDID, did)
}

func (r *Registry) CreateDID(ctx context.Context, req CreateRequest) (*Document, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	doc := &Document{
		DID:          req.DID,
		PublicKey:    req.PublicKey,
		Metadata:     req.Metadata,
		X509Cert:     req.X509Cert,
		Role:         req.Role,
		Organisation: req.Organisation,
	}

	err := r.ledger.Update(ctx, func(txn ledger.Txn) error {
		exists, err := ledger.Exists(ctx, txn, r.key(req.DID))
		if err != nil {
			return errors.Wrap(err, "checking existing DID")
		}
		if exists {
			return errors.Wrap(ErrDuplicateIdentity, req.DID)
		}

		if !r.validator.Validate(req.X509Cert) {
			return certificate.ErrInvalid
		}

		doc.CreatedAt = r.now().UTC().Format(time.RFC3339)

		return ledger.PutJSON(ctx, txn, r.key(req.DID), doc)
	})
	if err != nil {
		return nil, err
	}

	r.log(req.DID).WithField("organisation", req.Organisation).Info("DID document created")

	return doc, nil
}

func (r *Registry) ReadDID(ctx context.Context, did string) (*Document, error) {
	doc := &Document{}

	err := r.ledger.View(ctx, func(txn ledger.Txn) error {
		return ledger.GetJSON(ctx, txn, r.key(did), doc)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "DID %s", did)
	}

	return doc, nil
}

// UpdateDID replaces the certificate bound to did. Nothing else on the
// document may change.
func (r *Registry) UpdateDID(ctx context.Context, did string, cert string) (*Document, error) {
	if did == "" || cert == "" {
		return nil, validation.Invalidf("did and x509Cert are required")
	}

	doc := &Document{}

	err := r.ledger.Update(ctx, func(txn ledger.Txn) error {
		if err := ledger.GetJSON(ctx, txn, r.key(did), doc); err != nil {
			return errors.Wrapf(err, "DID %s", did)
		}

		if r.policy == PolicyBindOnce && doc.X509Cert != "" {
			return errors.Wrap(ErrCertificateBound, did)
		}

		if !r.validator.Validate(cert) {
			return certificate.ErrInvalid
		}

		doc.X509Cert = cert

		return ledger.PutJSON(ctx, txn, r.key(did), doc)
	})
	if err != nil {
		return nil, err
	}

	r.log(did).Info("DID certificate updated")

	return doc, nil
}

func (r *Registry) log(did string) *logrus.Entry {
	return logging.WithFields(logging.Fields{
		"did":    did,
		"method": w3cdid.URL(did).Method(),
	})
}
