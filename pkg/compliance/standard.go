package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/internal/utils/logging"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

var (
	ErrDuplicateStandard = errors.WithMessage(ledger.ErrAlreadyExists, "standard")
)

type Criterion struct {
	Key      string
	Expected interface{}
}

// Standard is an ordered set of criteria a record must match exactly.
type Standard struct {
	ID       string
	Criteria []Criterion
}

// MarshalJSON emits the criteria as a single object in registration order.
func (s *Standard) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')

	for i, c := range s.Criteria {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Expected)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the order its keys appear in.
// A repeated key keeps its first position and its last value.
func (s *Standard) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("standard must be a JSON object")
	}

	criteria := []Criterion{}
	pos := map[string]int{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("unexpected token %v", tok)
		}

		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return errors.Wrapf(err, "criterion %s", key)
		}

		if i, ok := pos[key]; ok {
			criteria[i].Expected = v
			continue
		}

		pos[key] = len(criteria)
		criteria = append(criteria, Criterion{Key: key, Expected: v})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after standard")
	}

	s.Criteria = criteria
	return nil
}

func (w *Workflow) standardKey(id string) string {
	return w.keys.Key(ledger.KindStandard, id)
}

// RegisterStandard stores raw, a JSON object of criterion to expected
// value. Standards cannot be changed once registered.
func (w *Workflow) RegisterStandard(ctx context.Context, id string, raw []byte) (*Standard, error) {
	if id == "" {
		return nil, validation.Invalidf("standard id is required")
	}

	s := &Standard{ID: id}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, validation.Invalidf("standard %s: %s", id, err)
	}

	b, err := s.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "encoding standard")
	}

	err = w.ledger.Update(ctx, func(txn ledger.Txn) error {
		exists, err := ledger.Exists(ctx, txn, w.standardKey(id))
		if err != nil {
			return err
		}
		if exists {
			return errors.Wrap(ErrDuplicateStandard, id)
		}

		return txn.Put(ctx, w.standardKey(id), b)
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(logging.Fields{"standard": id, "criteria": len(s.Criteria)}).Info("standard registered")

	return s, nil
}

func (w *Workflow) ReadStandard(ctx context.Context, id string) (*Standard, error) {
	var s *Standard

	err := w.ledger.View(ctx, func(txn ledger.Txn) error {
		var err error
		s, err = w.getStandard(ctx, txn, id)
		return err
	})

	return s, err
}

func (w *Workflow) getStandard(ctx context.Context, txn ledger.Txn, id string) (*Standard, error) {
	s := &Standard{ID: id}

	if err := ledger.GetJSON(ctx, txn, w.standardKey(id), s); err != nil {
		return nil, errors.Wrapf(err, "standard %s", id)
	}

	return s, nil
}
