package did

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/agritrace/pkg/certificate"
	"github.com/tcfw/agritrace/pkg/certificate/certtest"
	"github.com/tcfw/agritrace/pkg/ledger"
	"github.com/tcfw/agritrace/pkg/validation"
)

func seedUnlinked(t *testing.T, l ledger.Store, did string) {
	doc := &Document{DID: did, PublicKey: "pk", Metadata: "m", Role: "processor", Organisation: "Mill"}
	if err := ledger.PutJSON(context.Background(), l, ledger.TypedKeys{}.Key(ledger.KindDID, did), doc); err != nil {
		t.Fatal(err)
	}
}

func TestLinkOnce(t *testing.T) {
	ctx := context.Background()
	r, l := newTestRegistry(t)
	linker := NewLinker(r)

	seedUnlinked(t, l, "did:example:mill")

	cert := certtest.Valid(t)

	res, err := linker.Link(ctx, "did:example:mill", cert)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Fingerprint, "z"))

	doc, err := linker.Entry(ctx, "did:example:mill")
	require.NoError(t, err)
	assert.Equal(t, cert, doc.X509Cert)

	_, err = linker.Link(ctx, "did:example:mill", certtest.Valid(t))
	assert.ErrorIs(t, err, ErrCertificateBound)
}

func TestLinkErrors(t *testing.T) {
	ctx := context.Background()
	r, l := newTestRegistry(t)
	linker := NewLinker(r)

	_, err := linker.Link(ctx, "did:example:mill", "")
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = linker.Link(ctx, "did:example:mill", certtest.Valid(t))
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	seedUnlinked(t, l, "did:example:mill")

	_, err = linker.Link(ctx, "did:example:mill", certtest.Expired(t))
	assert.ErrorIs(t, err, certificate.ErrInvalid)
}

func TestEntryAbsent(t *testing.T) {
	r, _ := newTestRegistry(t)

	doc, err := NewLinker(r).Entry(context.Background(), "did:example:ghost")
	assert.NoError(t, err)
	assert.Nil(t, doc)
}
