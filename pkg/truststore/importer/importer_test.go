package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/saturn/internal/certtest"
	"mercator-hq/saturn/pkg/truststore"
)

func newTestStore(t *testing.T) *truststore.Store {
	t.Helper()
	store, err := truststore.Open(filepath.Join(t.TempDir(), "trust.db"), "secret")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestScanOnceImportsPEMCertificate(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	identity := certtest.NewLeaf(t, "dropped", nil)
	if err := os.WriteFile(filepath.Join(dir, "dropped.pem"), certtest.CertPEM(identity.Cert), 0o600); err != nil {
		t.Fatalf("writing drop file: %v", err)
	}

	im := New(store, dir, 0)
	if err := im.ScanOnce(context.Background()); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	fingerprint := truststore.Fingerprint(identity.Cert)
	if _, err := store.FindCertificateByFingerprint(context.Background(), fingerprint); err != nil {
		t.Fatalf("dropped certificate not imported: %v", err)
	}
}

func TestScanOnceImportsDERAndCRL(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	ctx := context.Background()

	ca := certtest.NewCA(t, "drop-ca")
	rl := certtest.NewCRL(t, ca, time.Now().Add(time.Hour), false)

	if err := os.WriteFile(filepath.Join(dir, "ca.der"), ca.Cert.Raw, 0o600); err != nil {
		t.Fatalf("writing der file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "list.crl"), certtest.CRLPEM(rl), 0o600); err != nil {
		t.Fatalf("writing crl file: %v", err)
	}

	im := New(store, dir, 0)
	if err := im.ScanOnce(ctx); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if _, err := store.FindCertificateByFingerprint(ctx, truststore.Fingerprint(ca.Cert)); err != nil {
		t.Fatalf("der certificate not imported: %v", err)
	}
	crls, err := store.FindCRLsByIssuer(ctx, ca.Cert.Subject.String())
	if err != nil {
		t.Fatalf("crl lookup failed: %v", err)
	}
	if len(crls) != 1 {
		t.Fatalf("expected 1 imported crl, got %d", len(crls))
	}
}

func TestScanOnceSkipsDuplicates(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	ctx := context.Background()

	identity := certtest.NewLeaf(t, "twice", nil)
	if err := os.WriteFile(filepath.Join(dir, "twice.pem"), certtest.CertPEM(identity.Cert), 0o600); err != nil {
		t.Fatalf("writing drop file: %v", err)
	}

	im := New(store, dir, 0)
	if err := im.ScanOnce(ctx); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if err := im.ScanOnce(ctx); err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	records, err := store.ListCertificates(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record after duplicate scan, got %d", len(records))
	}
}

func TestScanOnceSkipsDuplicateCRLs(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	ctx := context.Background()

	ca := certtest.NewCA(t, "rescan-ca")
	rl := certtest.NewCRL(t, ca, time.Now().Add(time.Hour), false)
	if err := os.WriteFile(filepath.Join(dir, "list.crl"), certtest.CRLPEM(rl), 0o600); err != nil {
		t.Fatalf("writing crl file: %v", err)
	}

	// Watch rescans the drop directory on every start, so repeated scans of
	// the same file must not grow the CRLS table.
	im := New(store, dir, 0)
	if err := im.ScanOnce(ctx); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if err := im.ScanOnce(ctx); err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	crls, err := store.ListCRLs(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(crls) != 1 {
		t.Errorf("expected 1 crl after rescanning one file, got %d", len(crls))
	}
}

func TestScanOnceIgnoresUnrelatedFiles(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a certificate"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	im := New(store, dir, 0)
	if err := im.ScanOnce(context.Background()); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	records, err := store.ListCertificates(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no imports, got %d", len(records))
	}
}

func TestWatchImportsDroppedFile(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	im := New(store, dir, 50*time.Millisecond)
	done := make(chan error, 1)
	go func() {
		done <- im.Watch(ctx)
	}()

	// Give the watcher time to register before dropping the file.
	time.Sleep(200 * time.Millisecond)

	identity := certtest.NewLeaf(t, "watched", nil)
	if err := os.WriteFile(filepath.Join(dir, "watched.crt"), certtest.CertPEM(identity.Cert), 0o600); err != nil {
		t.Fatalf("writing drop file: %v", err)
	}

	fingerprint := truststore.Fingerprint(identity.Cert)
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := store.FindCertificateByFingerprint(ctx, fingerprint); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("dropped file was not imported before deadline")
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled from Watch, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, _, err := parse([]byte("garbage")); err == nil {
		t.Fatal("expected parse failure on garbage input")
	}
}

func TestImportableExtensions(t *testing.T) {
	tests := map[string]bool{
		"a.pem":  true,
		"a.crt":  true,
		"a.CER":  true,
		"a.der":  true,
		"a.crl":  true,
		"a.txt":  false,
		"pemful": false,
	}
	for name, want := range tests {
		if got := importable(name); got != want {
			t.Errorf("importable(%q) = %v, want %v", name, got, want)
		}
	}
}
