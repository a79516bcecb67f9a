package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/agritrace/pkg/credential"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

type testEnv struct {
	l     *ledger.MemStore
	creds *credential.Engine
	w     *Workflow
	now   time.Time
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	env := &testEnv{
		l:   ledger.NewMemStore(),
		now: time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	creds, err := credential.NewEngine(env.l, credential.WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	env.creds = creds

	w, err := NewWorkflow(env.l, creds, append([]Option{WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	env.w = w

	return env
}

func (env *testEnv) record(t *testing.T, id string, attrs map[string]interface{}) {
	_, err := env.w.CreateRecord(context.Background(), RecordRequest{
		ID:         id,
		DID:        "did:example:sensor",
		DataType:   "cold-chain",
		Value:      "ok",
		Attributes: attrs,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (env *testEnv) standard(t *testing.T, id, raw string) {
	if _, err := env.w.RegisterStandard(context.Background(), id, []byte(raw)); err != nil {
		t.Fatal(err)
	}
}

func TestNonCompliantProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.standard(t, "S1", `{"temperature":"5C"}`)
	env.record(t, "P1", map[string]interface{}{"temperature": "6C"})

	res, err := env.w.VerifyCompliance(ctx, "P1", "S1")
	require.NoError(t, err)
	assert.False(t, res.Compliant)
	assert.Equal(t, []string{"temperature"}, res.FailedCriteria)

	_, err = env.w.IssueQualityCertificate(ctx, "P1", "S1", "cert1")
	assert.ErrorIs(t, err, ErrComplianceFailure)

	ferr := &FailureError{}
	if assert.True(t, errors.As(err, &ferr)) {
		assert.Equal(t, []string{"temperature"}, ferr.FailedCriteria)
	}

	_, err = env.w.ReadCertificate(ctx, "cert1")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestCompliantProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.standard(t, "S1", `{"temperature":"5C"}`)
	env.record(t, "P1", map[string]interface{}{"temperature": "5C", "humidity": "80%"})

	res, err := env.w.VerifyCompliance(ctx, "P1", "S1")
	require.NoError(t, err)
	assert.True(t, res.Compliant)
	assert.Empty(t, res.FailedCriteria)

	qc, err := env.w.IssueQualityCertificate(ctx, "P1", "S1", "cert1")
	require.NoError(t, err)
	assert.Equal(t, DefaultAuthority, qc.IssuedBy)
	assert.Equal(t, "2024-09-01T10:00:00Z", qc.Timestamp)

	stored, err := env.w.ReadCertificate(ctx, "cert1")
	require.NoError(t, err)
	assert.Equal(t, "P1", stored.ProductID)
	assert.Equal(t, "S1", stored.StandardID)

	raw, err := env.l.Get(ctx, "trace:P1")
	require.NoError(t, err)
	evidence, err := Evidence(raw)
	require.NoError(t, err)
	assert.Equal(t, evidence.String(), stored.Evidence)

	_, err = env.w.IssueQualityCertificate(ctx, "P1", "S1", "cert1")
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)
}

func TestFailedCriteriaOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.standard(t, "S2", `{"zinc":1,"temperature":"5C","acidity":3.5,"dataType":"cold-chain"}`)
	env.record(t, "P2", map[string]interface{}{"zinc": 2, "acidity": 3.5})

	res, err := env.w.VerifyCompliance(ctx, "P2", "S2")
	require.NoError(t, err)
	assert.Equal(t, []string{"zinc", "temperature"}, res.FailedCriteria)
}

func TestVerifyComplianceNotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.w.VerifyCompliance(ctx, "P404", "S1")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	env.record(t, "P1", nil)
	_, err = env.w.VerifyCompliance(ctx, "P1", "S404")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestIssueQualityCertificateValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.w.IssueQualityCertificate(context.Background(), "P1", "", "cert1")
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestReadTraceabilityData(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.record(t, "P1", map[string]interface{}{"temperature": "5C"})

	_, err := env.w.GrantAccess(ctx, "did:example:auditor", []string{"read"}, env.now.Add(time.Hour))
	require.NoError(t, err)

	rec, err := env.w.ReadTraceabilityData(ctx, "P1", "did:example:auditor")
	require.NoError(t, err)
	assert.Equal(t, "5C", rec.Attributes["temperature"])

	_, err = env.w.ReadTraceabilityData(ctx, "P404", "did:example:auditor")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestReadTraceabilityDataWrongIssuer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.record(t, "P1", nil)

	_, err := env.creds.IssueAccess(ctx, "did:example:retailer", []string{"read"}, env.now.Add(time.Hour), "Self Signed Ltd")
	require.NoError(t, err)

	_, err = env.w.ReadTraceabilityData(ctx, "P1", "did:example:retailer")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestReadTraceabilityDataDenied(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.record(t, "P1", nil)

	_, err := env.w.ReadTraceabilityData(ctx, "P1", "did:example:nobody")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = env.w.GrantAccess(ctx, "did:example:auditor", []string{"read"}, env.now.Add(time.Hour))
	require.NoError(t, err)

	env.now = env.now.Add(2 * time.Hour)

	_, err = env.w.ReadTraceabilityData(ctx, "P1", "did:example:auditor")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.ErrorIs(t, err, credential.ErrExpired)

	_, err = env.w.ReadTraceabilityData(ctx, "P1", "did:example:auditor")
	assert.ErrorIs(t, err, credential.ErrRevoked)
}

func TestCustomAuthority(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, WithAuthority("Organic Board"))

	env.record(t, "P1", nil)

	vc, err := env.w.GrantAccess(ctx, "did:example:auditor", []string{"read"}, env.now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Organic Board", vc.Issuer)

	_, err = env.w.ReadTraceabilityData(ctx, "P1", "did:example:auditor")
	assert.NoError(t, err)
}
