package credential

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

func TestIssueAndVerifyRole(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	_, err := e.IssueRole(ctx, "did:example:auditor", []string{"auditor"}, "Ministry")
	require.NoError(t, err)

	vc, err := e.VerifyRole(ctx, "did:example:auditor")
	require.NoError(t, err)
	assert.Equal(t, []string{"auditor"}, vc.Roles)
	assert.Nil(t, vc.RevokedReason)
}

func TestIssueRoleMissingFields(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.IssueRole(context.Background(), "did:example:auditor", []string{"auditor"}, "")
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestRevokeRoleRequiresReason(t *testing.T) {
	ctx := context.Background()
	e, l, _ := newTestEngine(t)

	_, err := e.IssueRole(ctx, "did:example:auditor", []string{"auditor"}, "Ministry")
	require.NoError(t, err)

	err = e.RevokeRole(ctx, "did:example:auditor", "")
	assert.ErrorIs(t, err, validation.ErrInvalid)

	err = e.RevokeRole(ctx, "did:example:auditor", "  \t")
	assert.ErrorIs(t, err, validation.ErrInvalid)

	stored := &RoleCredential{}
	require.NoError(t, ledger.GetJSON(ctx, l, "vc-role:did:example:auditor", stored))
	assert.False(t, stored.Revoked)
}

func TestRevokeRoleCarriesReason(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	err := e.RevokeRole(ctx, "did:example:auditor", "left organisation")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = e.IssueRole(ctx, "did:example:auditor", []string{"auditor"}, "Ministry")
	require.NoError(t, err)

	require.NoError(t, e.RevokeRole(ctx, "did:example:auditor", "left organisation"))

	_, err = e.VerifyRole(ctx, "did:example:auditor")
	assert.ErrorIs(t, err, ErrRevoked)
	assert.Contains(t, err.Error(), "left organisation")
}

func TestAccessAndRoleDoNotCollide(t *testing.T) {
	ctx := context.Background()
	e, l, clk := newTestEngine(t)

	_, err := e.IssueRole(ctx, "did:example:x", []string{"auditor"}, "Ministry")
	require.NoError(t, err)
	_, err = e.IssueAccess(ctx, "did:example:x", []string{"read"}, clk.t.Add(time.Hour), "QIO")
	require.NoError(t, err)

	assert.Equal(t, 2, l.Len())

	_, err = e.VerifyRole(ctx, "did:example:x")
	assert.NoError(t, err)
}
