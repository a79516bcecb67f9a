// Package certtest generates throwaway certificates for tests.
package certtest

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509/pkix"
	"testing"
	"time"

	"github.com/tcfw/agritrace/pkg/certificate"
)

// Generate returns a self-signed PEM certificate valid between notBefore
// and notAfter.
func Generate(t testing.TB, notBefore, notAfter time.Time) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	cert, err := certificate.SelfSigned(priv, pkix.Name{
		CommonName:   "farm.example",
		Organization: []string{"Test Cooperative"},
	}, notBefore, notAfter)
	if err != nil {
		t.Fatal(err)
	}

	return cert
}

// Valid returns a certificate valid for a day either side of now.
func Valid(t testing.TB) string {
	now := time.Now()
	return Generate(t, now.Add(-24*time.Hour), now.Add(24*time.Hour))
}

// Expired returns a certificate whose window closed yesterday.
func Expired(t testing.TB) string {
	now := time.Now()
	return Generate(t, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
}
