package certificate

import (
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

// Fingerprint is the base58btc multibase of the sha2-256 multihash of
// the certificate's DER bytes.
func Fingerprint(cert string) (string, error) {
	c, err := Parse(cert)
	if err != nil {
		return "", err
	}

	mh, err := multihash.Sum(c.Raw, multihash.SHA2_256, -1)
	if err != nil {
		return "", errors.Wrap(err, "hashing certificate")
	}

	return multibase.Encode(multibase.Base58BTC, mh)
}
