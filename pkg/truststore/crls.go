package truststore

import (
	"context"
	"crypto/x509"
	"encoding/asn1"
	"strings"
	"time"
)

// oidDeltaCRLIndicator is the X.509 extension marking a delta CRL.
var oidDeltaCRLIndicator = asn1.ObjectIdentifier{2, 5, 29, 27}

// CRLRecord is one row of the CRLS table. Every field is required.
type CRLRecord struct {
	ID         int64
	Delta      bool
	IssuerName string
	ThisUpdate time.Time
	NextUpdate time.Time
	Raw        []byte
}

// NewCRLRecord builds a record from a parsed revocation list.
func NewCRLRecord(rl *x509.RevocationList) *CRLRecord {
	rec := &CRLRecord{
		IssuerName: rl.Issuer.String(),
		ThisUpdate: rl.ThisUpdate.UTC(),
		NextUpdate: rl.NextUpdate.UTC(),
		Raw:        rl.Raw,
	}
	for _, ext := range rl.Extensions {
		if ext.Id.Equal(oidDeltaCRLIndicator) {
			rec.Delta = true
			break
		}
	}
	return rec
}

// RevocationList parses the record's raw DER bytes.
func (r *CRLRecord) RevocationList() (*x509.RevocationList, error) {
	return x509.ParseRevocationList(r.Raw)
}

var crlInsertColumns = crlColumns[1:]

// InsertCRL adds a record and returns its assigned ID.
func (s *Store) InsertCRL(ctx context.Context, rec *CRLRecord) (int64, error) {
	query := "INSERT INTO " + crlsTable +
		" (" + strings.Join(crlInsertColumns, ", ") + ")" +
		" VALUES (" + placeholders(len(crlInsertColumns)) + ")"

	start := time.Now()
	res, err := s.db.ExecContext(ctx, query,
		boolToInt(rec.Delta),
		rec.IssuerName,
		timeToTicks(rec.ThisUpdate),
		timeToTicks(rec.NextUpdate),
		rec.Raw,
	)
	s.observe("insert_crl", start, err)
	if err != nil {
		return 0, newStorageError(s.backendName, "insert_crl", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, newStorageError(s.backendName, "insert_crl", err)
	}
	rec.ID = id

	s.logger.Debug("crl inserted", "id", id, "issuer", rec.IssuerName, "delta", rec.Delta)
	return id, nil
}

// ContainsCRL reports whether a CRL with identical raw bytes is already
// stored. The CRLS table has no uniqueness constraint, so callers that
// rescan their inputs use this to keep inserts idempotent.
func (s *Store) ContainsCRL(ctx context.Context, raw []byte) (bool, error) {
	start := time.Now()
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM "+crlsTable+" WHERE CRL = ?", raw).Scan(&n)
	s.observe("contains_crl", start, err)
	if err != nil {
		return false, newStorageError(s.backendName, "contains_crl", err)
	}
	return n > 0, nil
}

// DeleteCRL removes a record by ID.
func (s *Store) DeleteCRL(ctx context.Context, id int64) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+crlsTable+" WHERE ID = ?", id)
	s.observe("delete_crl", start, err)
	if err != nil {
		return newStorageError(s.backendName, "delete_crl", err)
	}
	return s.requireRow(res)
}

// FindCRLsByIssuer returns every CRL for an issuer, full and delta, ordered
// by this-update descending (newest first).
func (s *Store) FindCRLsByIssuer(ctx context.Context, issuer string) ([]*CRLRecord, error) {
	return s.findCRLs(ctx, "find_crls_by_issuer", "WHERE ISSUERNAME = ?", issuer)
}

// ListCRLs returns every record, ordered by this-update descending.
func (s *Store) ListCRLs(ctx context.Context) ([]*CRLRecord, error) {
	return s.findCRLs(ctx, "list_crls", "")
}

// DeleteExpiredCRLs removes every CRL whose next-update time is before now
// and returns the number deleted.
func (s *Store) DeleteExpiredCRLs(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM "+crlsTable+" WHERE NEXTUPDATE < ?", timeToTicks(now))
	s.observe("delete_expired_crls", start, err)
	if err != nil {
		return 0, newStorageError(s.backendName, "delete_expired_crls", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newStorageError(s.backendName, "delete_expired_crls", err)
	}
	return n, nil
}

func (s *Store) findCRLs(ctx context.Context, op, where string, args ...any) ([]*CRLRecord, error) {
	query := "SELECT " + strings.Join(crlColumns, ", ") + " FROM " + crlsTable
	if where != "" {
		query += " " + where
	}
	query += " ORDER BY THISUPDATE DESC"

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.observe(op, start, err)
		return nil, newStorageError(s.backendName, op, err)
	}
	defer rows.Close()

	var records []*CRLRecord
	for rows.Next() {
		var (
			rec        CRLRecord
			delta      int64
			thisUpdate int64
			nextUpdate int64
		)
		if err := rows.Scan(&rec.ID, &delta, &rec.IssuerName, &thisUpdate, &nextUpdate, &rec.Raw); err != nil {
			s.observe(op, start, err)
			return nil, newStorageError(s.backendName, op, err)
		}
		rec.Delta = delta != 0
		rec.ThisUpdate = ticksToTime(thisUpdate)
		rec.NextUpdate = ticksToTime(nextUpdate)
		records = append(records, &rec)
	}
	err = rows.Err()
	s.observe(op, start, err)
	if err != nil {
		return nil, newStorageError(s.backendName, op, err)
	}
	return records, nil
}
