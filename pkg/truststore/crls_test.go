package truststore

import (
	"context"
	"errors"
	"testing"
	"time"

	"mercator-hq/saturn/internal/certtest"
)

func TestInsertAndFindCRL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ca := certtest.NewCA(t, "crl-issuer")
	rl := certtest.NewCRL(t, ca, time.Now().Add(24*time.Hour), false)
	rec := NewCRLRecord(rl)

	id, err := store.InsertCRL(ctx, rec)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero ID")
	}

	records, err := store.FindCRLsByIssuer(ctx, rec.IssuerName)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.Delta {
		t.Error("full CRL misclassified as delta")
	}
	if !got.ThisUpdate.Equal(rec.ThisUpdate) || !got.NextUpdate.Equal(rec.NextUpdate) {
		t.Errorf("update window drifted: want [%v, %v], got [%v, %v]",
			rec.ThisUpdate, rec.NextUpdate, got.ThisUpdate, got.NextUpdate)
	}
	if string(got.Raw) != string(rl.Raw) {
		t.Error("raw CRL bytes drifted")
	}

	if _, err := got.RevocationList(); err != nil {
		t.Errorf("reparsing stored CRL: %v", err)
	}
}

func TestDeltaCRLFlag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ca := certtest.NewCA(t, "delta-issuer")
	rl := certtest.NewCRL(t, ca, time.Now().Add(time.Hour), true)
	rec := NewCRLRecord(rl)

	if !rec.Delta {
		t.Fatal("delta CRL indicator not detected")
	}

	if _, err := store.InsertCRL(ctx, rec); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	records, err := store.FindCRLsByIssuer(ctx, rec.IssuerName)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(records) != 1 || !records[0].Delta {
		t.Error("delta flag lost in round trip")
	}
}

func TestContainsCRL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ca := certtest.NewCA(t, "contains-issuer")
	stored := certtest.NewCRL(t, ca, time.Now().Add(time.Hour), false)
	other := certtest.NewCRL(t, ca, time.Now().Add(2*time.Hour), false)

	if _, err := store.InsertCRL(ctx, NewCRLRecord(stored)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := store.ContainsCRL(ctx, stored.Raw)
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if !got {
		t.Error("stored CRL not found by raw bytes")
	}

	got, err = store.ContainsCRL(ctx, other.Raw)
	if err != nil {
		t.Fatalf("contains failed: %v", err)
	}
	if got {
		t.Error("unstored CRL reported as present")
	}
}

func TestDeleteCRL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ca := certtest.NewCA(t, "deleted-issuer")
	rec := NewCRLRecord(certtest.NewCRL(t, ca, time.Now().Add(time.Hour), false))

	id, err := store.InsertCRL(ctx, rec)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := store.DeleteCRL(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.DeleteCRL(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestDeleteExpiredCRLs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ca := certtest.NewCA(t, "expiry-issuer")
	expired := NewCRLRecord(certtest.NewCRL(t, ca, time.Now().Add(-time.Hour), false))
	current := NewCRLRecord(certtest.NewCRL(t, ca, time.Now().Add(24*time.Hour), false))

	if _, err := store.InsertCRL(ctx, expired); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := store.InsertCRL(ctx, current); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	n, err := store.DeleteExpiredCRLs(ctx, time.Now())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned CRL, got %d", n)
	}

	records, err := store.ListCRLs(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != current.ID {
		t.Errorf("expected only the current CRL to survive")
	}
}
