package did

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/assert"

	"github.com/tcfw/agritrace/pkg/did/w3cdid"
)

func TestDocumentW3C(t *testing.T) {
	pk, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	mb, err := multibase.Encode(multibase.Base58BTC, pk)
	if err != nil {
		t.Fatal(err)
	}

	d := &Document{DID: "did:example:farmer1", PublicKey: mb}
	w := d.W3C()

	assert.Equal(t, "did:example:farmer1", w.ID)
	if assert.Len(t, w.VerificationMethod, 1) {
		vm := w.VerificationMethod[0]
		assert.Equal(t, w3cdid.Ed25519VerificationKey2018, vm.Type)
		assert.Equal(t, mb, vm.PublicKeyMultibase)
		assert.Equal(t, []string{vm.ID}, w.Authentication)
	}
}

func TestDocumentW3CUnencodedKey(t *testing.T) {
	d := &Document{DID: "did:example:farmer1", PublicKey: "!not-multibase"}
	w := d.W3C()

	assert.Empty(t, w.VerificationMethod)
}
