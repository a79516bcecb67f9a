package did

import (
	"crypto/ed25519"
	"crypto/x509/pkix"
	"io"
	"time"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/tcfw/agritrace/pkg/certificate"
)

const (
	// Method is the DID method used for generated identifiers.
	Method = "agritrace"
)

// Keypair is an Ed25519 identity key held by a supply chain participant.
type Keypair struct {
	sk ed25519.PrivateKey
}

func NewKeypair(sk []byte) (*Keypair, error) {
	if len(sk) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("expected %d byte private key", ed25519.PrivateKeySize)
	}
	return &Keypair{sk: ed25519.PrivateKey(sk)}, nil
}

func GenerateKeypair(rand io.Reader) (*Keypair, error) {
	_, sk, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, err
	}

	return &Keypair{sk}, nil
}

func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.sk.Public().(ed25519.PublicKey)
}

// PublicKeyMultibase is the base58btc form stored in DID documents.
func (k *Keypair) PublicKeyMultibase() (string, error) {
	return multibase.Encode(multibase.Base58BTC, k.PublicKey())
}

// PrivateKeyMultibase is the base58btc form of the full private key.
func (k *Keypair) PrivateKeyMultibase() (string, error) {
	return multibase.Encode(multibase.Base58BTC, k.sk)
}

// DID derives a stable identifier from the public key.
func (k *Keypair) DID() (string, error) {
	mh, err := multihash.Sum(k.PublicKey(), multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}

	return "did:" + Method + ":" + mh.B58String(), nil
}

// Certificate issues a self-signed certificate for the keypair.
func (k *Keypair) Certificate(org string, notBefore, notAfter time.Time) (string, error) {
	id, err := k.DID()
	if err != nil {
		return "", err
	}

	return certificate.SelfSigned(k.sk, pkix.Name{CommonName: id, Organization: []string{org}}, notBefore, notAfter)
}

// DecodeKeypair reads a keypair from its multibase private key.
func DecodeKeypair(mb string) (*Keypair, error) {
	_, b, err := multibase.Decode(mb)
	if err != nil {
		return nil, errors.Wrap(err, "decoding private key")
	}

	return NewKeypair(b)
}
