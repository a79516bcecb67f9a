package compliance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

var (
	ErrDuplicateRecord = errors.WithMessage(ledger.ErrAlreadyExists, "traceability record")
)

// Record is an immutable traceability observation about a product.
// Attributes carries named measurements checked against standards.
type Record struct {
	ID             string                 `json:"id"`
	Date           string                 `json:"date"`
	DID            string                 `json:"did"`
	DataType       string                 `json:"dataType"`
	Value          string                 `json:"value"`
	AdditionalInfo string                 `json:"additionalInfo"`
	Attributes     map[string]interface{} `json:"attributes,omitempty"`
}

// Lookup returns the value of key, preferring the fixed fields over
// Attributes.
func (r *Record) Lookup(key string) (interface{}, bool) {
	switch key {
	case "id":
		return r.ID, true
	case "date":
		return r.Date, true
	case "did":
		return r.DID, true
	case "dataType":
		return r.DataType, true
	case "value":
		return r.Value, true
	case "additionalInfo":
		return r.AdditionalInfo, true
	}

	v, ok := r.Attributes[key]
	return v, ok
}

type RecordRequest struct {
	ID             string                 `json:"id" validate:"required"`
	DID            string                 `json:"did" validate:"required"`
	DataType       string                 `json:"dataType" validate:"required"`
	Value          string                 `json:"value" validate:"required"`
	AdditionalInfo string                 `json:"additionalInfo"`
	Attributes     map[string]interface{} `json:"attributes"`
}

func (w *Workflow) recordKey(id string) string {
	return w.keys.Key(ledger.KindTraceability, id)
}

func (w *Workflow) CreateRecord(ctx context.Context, req RecordRequest) (*Record, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	r := &Record{
		ID:             req.ID,
		Date:           w.now().UTC().Format(time.RFC3339),
		DID:            req.DID,
		DataType:       req.DataType,
		Value:          req.Value,
		AdditionalInfo: req.AdditionalInfo,
		Attributes:     req.Attributes,
	}

	err := w.ledger.Update(ctx, func(txn ledger.Txn) error {
		exists, err := ledger.Exists(ctx, txn, w.recordKey(req.ID))
		if err != nil {
			return err
		}
		if exists {
			return errors.Wrap(ErrDuplicateRecord, req.ID)
		}

		return ledger.PutJSON(ctx, txn, w.recordKey(req.ID), r)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{"product": req.ID, "did": req.DID}).Info("traceability record created")

	return r, nil
}

func (w *Workflow) ReadRecord(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, validation.Invalidf("id is required")
	}

	r := &Record{}

	err := w.ledger.View(ctx, func(txn ledger.Txn) error {
		return ledger.GetJSON(ctx, txn, w.recordKey(id), r)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "traceability data for product %s", id)
	}

	return r, nil
}
