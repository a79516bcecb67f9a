package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedKeysSeparateKinds(t *testing.T) {
	ks := TypedKeys{}

	assert.Equal(t, "did:did:example:1", ks.Key(KindDID, "did:example:1"))
	assert.NotEqual(t, ks.Key(KindDID, "x"), ks.Key(KindAccessCredential, "x"))
}

func TestFlatKeysCollide(t *testing.T) {
	ks := FlatKeys{}

	assert.Equal(t, "did:example:1", ks.Key(KindDID, "did:example:1"))
	assert.Equal(t, ks.Key(KindDID, "x"), ks.Key(KindRoleCredential, "x"))
}

func TestParseKeyspace(t *testing.T) {
	tests := map[string]string{
		"":      "typed",
		"typed": "typed",
		"FLAT":  "flat",
	}

	for in, expect := range tests {
		ks, err := ParseKeyspace(in)
		if assert.NoError(t, err, in) {
			assert.Equal(t, expect, ks.Name())
		}
	}

	_, err := ParseKeyspace("bogus")
	assert.Error(t, err)
}
