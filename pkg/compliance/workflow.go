package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/credential"
	"github.com/tcfw/agritrace/pkg/ledger"
)

const (
	DefaultAuthority = "Quality Insurance Organisation"
)

var (
	ErrAccessDenied      = errors.New("access denied")
	ErrComplianceFailure = errors.New("compliance failure")
)

// FailureError reports which criteria a product failed.
type FailureError struct {
	ProductID      string
	StandardID     string
	FailedCriteria []string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: product %s does not comply with standard %s: %v", ErrComplianceFailure, e.ProductID, e.StandardID, e.FailedCriteria)
}

func (e *FailureError) Unwrap() error {
	return ErrComplianceFailure
}

// AccessError is ErrAccessDenied carrying the reason access was refused.
type AccessError struct {
	DID   string
	Cause error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAccessDenied, e.Cause)
}

func (e *AccessError) Unwrap() []error {
	return []error{ErrAccessDenied, e.Cause}
}

type Option func(*Workflow) error

func WithKeyspace(ks ledger.Keyspace) Option {
	return func(w *Workflow) error {
		w.keys = ks
		return nil
	}
}

// WithAuthority sets the single issuer trusted to grant read access and
// stamped on quality certificates.
func WithAuthority(a string) Option {
	return func(w *Workflow) error {
		if a == "" {
			return errors.New("empty authority")
		}
		w.authority = a
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) error {
		w.now = now
		return nil
	}
}

// Workflow checks traceability records against standards and certifies
// compliant products.
type Workflow struct {
	ledger    ledger.Ledger
	keys      ledger.Keyspace
	creds     *credential.Engine
	authority string
	now       func() time.Time
}

func NewWorkflow(l ledger.Ledger, creds *credential.Engine, opts ...Option) (*Workflow, error) {
	w := &Workflow{
		ledger:    l,
		keys:      ledger.TypedKeys{},
		creds:     creds,
		authority: DefaultAuthority,
		now:       time.Now,
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	if w.creds == nil {
		return nil, errors.New("credential engine required")
	}

	return w, nil
}

func (w *Workflow) Authority() string {
	return w.authority
}

type Result struct {
	Compliant      bool     `json:"compliant"`
	Message        string   `json:"message"`
	FailedCriteria []string `json:"failedCriteria,omitempty"`
}

// GrantAccess issues an access credential on behalf of the trusted
// authority.
func (w *Workflow) GrantAccess(ctx context.Context, did string, permissions []string, expiry time.Time) (*credential.AccessCredential, error) {
	return w.creds.IssueAccess(ctx, did, permissions, expiry, w.authority)
}

// ReadTraceabilityData returns the record for productID if credentialRef
// names a valid access credential issued by the trusted authority.
func (w *Workflow) ReadTraceabilityData(ctx context.Context, productID string, credentialRef string) (*Record, error) {
	vc, err := w.creds.VerifyAccess(ctx, credentialRef)
	if err != nil {
		return nil, &AccessError{DID: credentialRef, Cause: err}
	}

	if vc.Issuer != w.authority {
		logging.WithFields(logging.Fields{
			"did":    credentialRef,
			"issuer": vc.Issuer,
		}).Warn("rejecting credential from untrusted issuer")
		return nil, &AccessError{
			DID:   credentialRef,
			Cause: errors.Errorf("credential for %s not issued by %s", credentialRef, w.authority),
		}
	}

	return w.ReadRecord(ctx, productID)
}

func (w *Workflow) VerifyCompliance(ctx context.Context, productID, standardID string) (*Result, error) {
	var res *Result

	err := w.ledger.View(ctx, func(txn ledger.Txn) error {
		var err error
		res, _, err = w.check(ctx, txn, productID, standardID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// check compares every criterion of the standard with the record. A
// criterion missing from the record fails.
func (w *Workflow) check(ctx context.Context, txn ledger.Txn, productID, standardID string) (*Result, []byte, error) {
	raw, err := txn.Get(ctx, w.recordKey(productID))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "traceability data for product %s", productID)
	}

	rec := &Record{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, nil, errors.Wrap(err, "decoding traceability record")
	}

	std, err := w.getStandard(ctx, txn, standardID)
	if err != nil {
		return nil, nil, err
	}

	failed := []string{}
	for _, c := range std.Criteria {
		v, ok := rec.Lookup(c.Key)
		if !ok || !reflect.DeepEqual(v, c.Expected) {
			failed = append(failed, c.Key)
		}
	}

	if len(failed) > 0 {
		return &Result{
			Compliant:      false,
			Message:        fmt.Sprintf("Product %s does not comply with standard %s.", productID, standardID),
			FailedCriteria: failed,
		}, raw, nil
	}

	return &Result{
		Compliant: true,
		Message:   fmt.Sprintf("Product %s complies with standard %s.", productID, standardID),
	}, raw, nil
}
