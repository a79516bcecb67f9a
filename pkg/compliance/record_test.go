package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

func TestCreateRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	r, err := env.w.CreateRecord(ctx, RecordRequest{ID: "P1", DID: "did:example:sensor", DataType: "temperature", Value: "4C"})
	require.NoError(t, err)
	assert.Equal(t, "2024-09-01T10:00:00Z", r.Date)
	assert.Equal(t, "", r.AdditionalInfo)

	_, err = env.w.CreateRecord(ctx, RecordRequest{ID: "P1", DID: "did:example:sensor", DataType: "temperature", Value: "9C"})
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)

	read, err := env.w.ReadRecord(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "4C", read.Value)
}

func TestCreateRecordValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.w.CreateRecord(context.Background(), RecordRequest{ID: "P1", DID: "did:example:sensor", DataType: "temperature"})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = env.w.ReadRecord(context.Background(), "")
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestRecordLookup(t *testing.T) {
	r := &Record{DataType: "temperature", Value: "4C", Attributes: map[string]interface{}{"value": "shadowed", "origin": "NZ"}}

	v, ok := r.Lookup("value")
	assert.True(t, ok)
	assert.Equal(t, "4C", v)

	v, ok = r.Lookup("origin")
	assert.True(t, ok)
	assert.Equal(t, "NZ", v)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}
