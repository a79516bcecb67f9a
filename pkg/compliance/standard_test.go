package compliance

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

func TestStandardKeepsOrder(t *testing.T) {
	s := &Standard{}
	require.NoError(t, json.Unmarshal([]byte(`{"b":1,"a":"x","c":{"n":true},"b":2}`), s))

	keys := []string{}
	for _, c := range s.Criteria {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)
	assert.Equal(t, float64(2), s.Criteria[0].Expected)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":"x","c":{"n":true}}`, string(b))
}

func TestRegisterStandardRejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for _, raw := range []string{`[1,2]`, `"5C"`, `null`, `{`} {
		_, err := env.w.RegisterStandard(ctx, "S1", []byte(raw))
		assert.ErrorIs(t, err, validation.ErrInvalid, raw)
	}

	_, err := env.w.RegisterStandard(ctx, "", []byte(`{}`))
	assert.ErrorIs(t, err, validation.ErrInvalid)

	env.standard(t, "S1", `{"temperature":"5C"}`)

	_, err = env.w.RegisterStandard(ctx, "S1", []byte(`{"temperature":"7C"}`))
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)

	s, err := env.w.ReadStandard(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "5C", s.Criteria[0].Expected)
}
