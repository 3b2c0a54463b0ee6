// Package certtest generates throwaway certificates, keys, and CRLs for
// tests. Nothing here is suitable for production use.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

// Identity is a generated certificate with its private key.
type Identity struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// NewCA generates a self-signed CA certificate.
func NewCA(t *testing.T, commonName string) *Identity {
	t.Helper()
	return newIdentity(t, commonName, nil, true)
}

// NewLeaf generates an end-entity certificate signed by the given CA, or
// self-signed when ca is nil.
func NewLeaf(t *testing.T, commonName string, ca *Identity) *Identity {
	t.Helper()
	return newIdentity(t, commonName, ca, false)
}

func newIdentity(t *testing.T, commonName string, ca *Identity, isCA bool) *Identity {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		t.Fatalf("generating serial: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: commonName, Organization: []string{"certtest"}},
		NotBefore:    time.Now().Add(-time.Hour).Truncate(time.Second),
		NotAfter:     time.Now().Add(24 * time.Hour).Truncate(time.Second),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		EmailAddresses: []string{
			commonName + "@certtest.invalid",
		},
		BasicConstraintsValid: true,
	}
	if isCA {
		tmpl.IsCA = true
		tmpl.KeyUsage |= x509.KeyUsageCertSign | x509.KeyUsageCRLSign
		tmpl.MaxPathLenZero = true
	}

	parent := tmpl
	signer := key
	if ca != nil {
		parent = ca.Cert
		signer = ca.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &key.PublicKey, signer)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}
	return &Identity{Cert: cert, Key: key}
}

// NewCRL generates a revocation list issued by the CA. nextUpdate controls
// expiry; delta marks the list as a delta CRL.
func NewCRL(t *testing.T, ca *Identity, nextUpdate time.Time, delta bool) *x509.RevocationList {
	t.Helper()

	thisUpdate := time.Now().Add(-time.Minute)
	if nextUpdate.Before(thisUpdate) {
		// Already-expired lists still need ThisUpdate <= NextUpdate.
		thisUpdate = nextUpdate.Add(-time.Hour)
	}
	tmpl := &x509.RevocationList{
		Number:     big.NewInt(1),
		ThisUpdate: thisUpdate.Truncate(time.Second),
		NextUpdate: nextUpdate.Truncate(time.Second),
	}
	if delta {
		// Delta CRL indicator extension (2.5.29.27) referencing base CRL 1.
		val, err := asn1.Marshal(big.NewInt(1))
		if err != nil {
			t.Fatalf("encoding delta indicator: %v", err)
		}
		tmpl.ExtraExtensions = []pkix.Extension{{
			Id:       asn1.ObjectIdentifier{2, 5, 29, 27},
			Critical: true,
			Value:    val,
		}}
	}

	der, err := x509.CreateRevocationList(rand.Reader, tmpl, ca.Cert, ca.Key)
	if err != nil {
		t.Fatalf("creating crl: %v", err)
	}
	rl, err := x509.ParseRevocationList(der)
	if err != nil {
		t.Fatalf("parsing crl: %v", err)
	}
	return rl
}

// CertPEM encodes a certificate in PEM form.
func CertPEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

// CRLPEM encodes a revocation list in PEM form.
func CRLPEM(rl *x509.RevocationList) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: rl.Raw})
}
