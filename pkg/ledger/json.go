package ledger

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// GetJSON reads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	d, err := s.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(d, v); err != nil {
		return errors.Wrapf(err, "unmarshalling %s", key)
	}

	return nil
}

func PutJSON(ctx context.Context, s Store, key string, v interface{}) error {
	d, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "marshalling %s", key)
	}

	return s.Put(ctx, key, d)
}

// Exists reports whether key holds a non-empty value.
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	d, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return len(d) > 0, nil
}
