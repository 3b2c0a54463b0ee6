package test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/saturn/internal/certtest"
	"mercator-hq/saturn/pkg/truststore"
	"mercator-hq/saturn/pkg/truststore/backend"
	"mercator-hq/saturn/pkg/truststore/importer"
	"mercator-hq/saturn/pkg/truststore/janitor"
)

// TestEndToEnd exercises the full pipeline: backend resolution, file
// provisioning, schema creation, certificate and CRL round trips through
// the importer, maintenance pruning, and a reopen of the same database
// file.
func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state", "trust.db")
	dropDir := filepath.Join(dir, "drop")
	ctx := context.Background()

	provider, err := backend.Resolve()
	if err != nil {
		t.Fatalf("backend resolution failed: %v", err)
	}
	t.Logf("resolved backend: %s", provider.Name())

	store, err := truststore.Open(dbPath, "integration secret")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	// Import a CA, a leaf with a key, and two CRLs (one already expired).
	ca := certtest.NewCA(t, "integration-root")
	leaf := certtest.NewLeaf(t, "integration-leaf", ca)

	caRec := truststore.NewCertificateRecord(ca.Cert)
	caRec.Trusted = true
	if _, err := store.InsertCertificate(ctx, caRec); err != nil {
		t.Fatalf("inserting ca: %v", err)
	}

	leafRec := truststore.NewCertificateRecord(leaf.Cert)
	leafRec.PrivateKey = leaf.Key
	if _, err := store.InsertCertificate(ctx, leafRec); err != nil {
		t.Fatalf("inserting leaf: %v", err)
	}

	expired := truststore.NewCRLRecord(certtest.NewCRL(t, ca, time.Now().Add(-time.Hour), false))
	current := truststore.NewCRLRecord(certtest.NewCRL(t, ca, time.Now().Add(time.Hour), false))
	if _, err := store.InsertCRL(ctx, expired); err != nil {
		t.Fatalf("inserting expired crl: %v", err)
	}
	if _, err := store.InsertCRL(ctx, current); err != nil {
		t.Fatalf("inserting current crl: %v", err)
	}

	// Maintenance prunes only the expired CRL.
	janitor.New(store, "").RunOnce(ctx)
	crls, err := store.ListCRLs(ctx)
	if err != nil {
		t.Fatalf("listing crls: %v", err)
	}
	if len(crls) != 1 {
		t.Fatalf("expected 1 crl after maintenance, got %d", len(crls))
	}

	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Reopen the same file: schema creation must be idempotent and all
	// rows must survive with exact timestamps.
	store, err = truststore.Open(dbPath, "integration secret")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	got, err := store.FindCertificateByFingerprint(ctx, leafRec.Fingerprint)
	if err != nil {
		t.Fatalf("finding leaf after reopen: %v", err)
	}
	if got.PrivateKey == nil {
		t.Fatal("leaf private key lost across reopen")
	}
	if !got.NotAfter.Equal(leaf.Cert.NotAfter) {
		t.Errorf("timestamp drifted across reopen: want %v, got %v",
			leaf.Cert.NotAfter, got.NotAfter)
	}

	trusted, err := store.FindTrustedCertificates(ctx)
	if err != nil {
		t.Fatalf("finding trust anchors: %v", err)
	}
	if len(trusted) != 1 || trusted[0].Fingerprint != caRec.Fingerprint {
		t.Fatal("trust anchor set wrong after reopen")
	}

	// Drop-directory import picks up a new intermediate.
	intermediate := certtest.NewLeaf(t, "integration-intermediate", ca)
	if err := writeFile(t, filepath.Join(dropDir, "intermediate.pem"), certtest.CertPEM(intermediate.Cert)); err != nil {
		t.Fatalf("writing drop file: %v", err)
	}
	im := importer.New(store, dropDir, 0)
	if err := im.ScanOnce(ctx); err != nil {
		t.Fatalf("drop scan failed: %v", err)
	}
	if _, err := store.FindCertificateByFingerprint(ctx, truststore.Fingerprint(intermediate.Cert)); err != nil {
		t.Fatalf("dropped intermediate not imported: %v", err)
	}

	// Wrong-password open still works (schema only), but unsealing the
	// leaf's key must fail.
	wrong, err := truststore.Open(dbPath, "wrong secret")
	if err != nil {
		t.Fatalf("open with different password failed: %v", err)
	}
	defer wrong.Close()
	if _, err := wrong.FindCertificateByFingerprint(ctx, leafRec.Fingerprint); err == nil {
		t.Fatal("expected unseal failure with wrong password")
	} else if errors.Is(err, truststore.ErrNotFound) {
		t.Fatal("record should exist; only the key unseal should fail")
	}
}

func writeFile(t *testing.T, path string, data []byte) error {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
