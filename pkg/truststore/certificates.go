package truststore

import (
	"context"
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"database/sql"
	"encoding/hex"
	"errors"
	"math"
	"strings"
	"time"
)

// CertificateRecord is one row of the CERTIFICATES table together with its
// parsed domain fields. Raw holds the DER encoding and is unique across the
// table; PrivateKey, SubjectEmail and Algorithms are optional.
type CertificateRecord struct {
	ID                int64
	Trusted           bool
	KeyUsage          x509.KeyUsage
	BasicConstraints  int
	NotBefore         time.Time
	NotAfter          time.Time
	IssuerName        string
	SerialNumber      string
	SubjectEmail      string
	Fingerprint       string
	Algorithms        []string
	AlgorithmsUpdated time.Time
	Raw               []byte
	PrivateKey        crypto.PrivateKey
}

// NewCertificateRecord builds a record from a parsed certificate. The
// fingerprint is the lowercase hex SHA-256 of the DER encoding; the serial
// number is stored in decimal.
func NewCertificateRecord(cert *x509.Certificate) *CertificateRecord {
	rec := &CertificateRecord{
		KeyUsage:         cert.KeyUsage,
		BasicConstraints: basicConstraints(cert),
		NotBefore:        cert.NotBefore.UTC(),
		NotAfter:         cert.NotAfter.UTC(),
		IssuerName:       cert.Issuer.String(),
		SerialNumber:     cert.SerialNumber.String(),
		Fingerprint:      Fingerprint(cert),
		Raw:              cert.Raw,
	}
	if len(cert.EmailAddresses) > 0 {
		rec.SubjectEmail = cert.EmailAddresses[0]
	}
	return rec
}

// Certificate parses the record's raw DER bytes.
func (r *CertificateRecord) Certificate() (*x509.Certificate, error) {
	return x509.ParseCertificate(r.Raw)
}

// Fingerprint returns the canonical fingerprint of a certificate: the
// lowercase hex SHA-256 of its DER encoding.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// basicConstraints encodes the certificate's basic constraints as a single
// integer: -1 for end-entity certificates, the CA path length when one is
// asserted (0 counts), and MaxInt32 for a CA with no path length limit.
func basicConstraints(cert *x509.Certificate) int {
	if !cert.IsCA {
		return -1
	}
	if cert.MaxPathLenZero {
		return 0
	}
	if cert.MaxPathLen > 0 {
		return cert.MaxPathLen
	}
	return math.MaxInt32
}

// certificateInsertColumns is every CERTIFICATES column except the
// auto-incrementing ID, in canonical order.
var certificateInsertColumns = certificateColumns[1:]

// InsertCertificate adds a record and returns its assigned ID. The raw
// certificate must not already be present; the table's uniqueness
// constraint rejects duplicates.
func (s *Store) InsertCertificate(ctx context.Context, rec *CertificateRecord) (int64, error) {
	query := "INSERT INTO " + certificatesTable +
		" (" + strings.Join(certificateInsertColumns, ", ") + ")" +
		" VALUES (" + placeholders(len(certificateInsertColumns)) + ")"

	args, err := s.certificateArgs(rec)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	res, err := s.db.ExecContext(ctx, query, args...)
	s.observe("insert_certificate", start, err)
	if err != nil {
		return 0, newStorageError(s.backendName, "insert_certificate", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, newStorageError(s.backendName, "insert_certificate", err)
	}
	rec.ID = id

	s.logger.Debug("certificate inserted",
		"id", id, "fingerprint", rec.Fingerprint, "issuer", rec.IssuerName)
	return id, nil
}

// UpdateCertificate rewrites a record's mutable fields (trust flag,
// supported algorithms, algorithms-updated timestamp, and the sealed
// private key) by ID. The raw certificate and its parsed identity fields
// are immutable once inserted.
func (s *Store) UpdateCertificate(ctx context.Context, rec *CertificateRecord) error {
	sealedKey, err := s.sealedKey(rec)
	if err != nil {
		return err
	}

	query := "UPDATE " + certificatesTable +
		" SET TRUSTED = ?, ALGORITHMS = ?, ALGORITHMSUPDATED = ?, PRIVATEKEY = ? WHERE ID = ?"

	start := time.Now()
	res, err := s.db.ExecContext(ctx, query,
		boolToInt(rec.Trusted),
		nullableText(strings.Join(rec.Algorithms, ",")),
		timeToTicks(rec.AlgorithmsUpdated),
		sealedKey,
		rec.ID,
	)
	s.observe("update_certificate", start, err)
	if err != nil {
		return newStorageError(s.backendName, "update_certificate", err)
	}
	return s.requireRow(res)
}

// DeleteCertificate removes a record by ID.
func (s *Store) DeleteCertificate(ctx context.Context, id int64) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+certificatesTable+" WHERE ID = ?", id)
	s.observe("delete_certificate", start, err)
	if err != nil {
		return newStorageError(s.backendName, "delete_certificate", err)
	}
	return s.requireRow(res)
}

// FindCertificateByFingerprint looks up the record for a fingerprint.
// Returns ErrNotFound when no record matches.
func (s *Store) FindCertificateByFingerprint(ctx context.Context, fingerprint string) (*CertificateRecord, error) {
	return s.findOneCertificate(ctx, "find_by_fingerprint", "FINGERPRINT = ?", fingerprint)
}

// FindPrivateKey returns the unsealed private key stored for a fingerprint.
// Returns ErrNotFound when no record matches and ErrNoPrivateKey when the
// record carries no key.
func (s *Store) FindPrivateKey(ctx context.Context, fingerprint string) (crypto.PrivateKey, error) {
	rec, err := s.FindCertificateByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if rec.PrivateKey == nil {
		return nil, ErrNoPrivateKey
	}
	return rec.PrivateKey, nil
}

// FindCertificateByIssuerSerial looks up the record for an issuer name and
// decimal serial number. Returns ErrNotFound when no record matches.
func (s *Store) FindCertificateByIssuerSerial(ctx context.Context, issuer, serial string) (*CertificateRecord, error) {
	return s.findOneCertificate(ctx, "find_by_issuer_serial", "ISSUERNAME = ? AND SERIALNUMBER = ?", issuer, serial)
}

// FindCertificatesBySubjectEmail returns every record whose subject email
// matches, ordered by ID.
func (s *Store) FindCertificatesBySubjectEmail(ctx context.Context, email string) ([]*CertificateRecord, error) {
	return s.findCertificates(ctx, "find_by_subject_email", "SUBJECTEMAIL = ?", email)
}

// FindTrustedCertificates returns every record marked as a trust anchor,
// ordered by ID.
func (s *Store) FindTrustedCertificates(ctx context.Context) ([]*CertificateRecord, error) {
	return s.findCertificates(ctx, "find_trusted", "TRUSTED = 1")
}

// ListCertificates returns every record, ordered by ID.
func (s *Store) ListCertificates(ctx context.Context) ([]*CertificateRecord, error) {
	return s.findCertificates(ctx, "list_certificates", "")
}

// SetTrusted updates the trust flag for the record with the given
// fingerprint.
func (s *Store) SetTrusted(ctx context.Context, fingerprint string, trusted bool) error {
	start := time.Now()
	res, err := s.db.ExecContext(ctx,
		"UPDATE "+certificatesTable+" SET TRUSTED = ? WHERE FINGERPRINT = ?",
		boolToInt(trusted), fingerprint)
	s.observe("set_trusted", start, err)
	if err != nil {
		return newStorageError(s.backendName, "set_trusted", err)
	}
	return s.requireRow(res)
}

func (s *Store) findOneCertificate(ctx context.Context, op, where string, args ...any) (*CertificateRecord, error) {
	query := "SELECT " + strings.Join(certificateColumns, ", ") +
		" FROM " + certificatesTable + " WHERE " + where

	start := time.Now()
	row := s.db.QueryRowContext(ctx, query, args...)
	rec, err := s.scanCertificate(row)
	s.observe(op, start, err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, newStorageError(s.backendName, op, err)
	}
	return rec, nil
}

func (s *Store) findCertificates(ctx context.Context, op, where string, args ...any) ([]*CertificateRecord, error) {
	query := "SELECT " + strings.Join(certificateColumns, ", ") + " FROM " + certificatesTable
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY ID"

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.observe(op, start, err)
		return nil, newStorageError(s.backendName, op, err)
	}
	defer rows.Close()

	var records []*CertificateRecord
	for rows.Next() {
		rec, err := s.scanCertificate(rows)
		if err != nil {
			s.observe(op, start, err)
			return nil, newStorageError(s.backendName, op, err)
		}
		records = append(records, rec)
	}
	err = rows.Err()
	s.observe(op, start, err)
	if err != nil {
		return nil, newStorageError(s.backendName, op, err)
	}
	return records, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanCertificate.
type scanner interface {
	Scan(dest ...any) error
}

// scanCertificate reads one row in canonical column order and unseals the
// private key if present.
func (s *Store) scanCertificate(row scanner) (*CertificateRecord, error) {
	var (
		rec               CertificateRecord
		trusted, keyUsage int64
		notBefore         int64
		notAfter          int64
		algorithmsUpdated int64
		subjectEmail      sql.NullString
		algorithms        sql.NullString
		sealedKey         []byte
	)

	err := row.Scan(
		&rec.ID,
		&trusted,
		&keyUsage,
		&rec.BasicConstraints,
		&notBefore,
		&notAfter,
		&rec.IssuerName,
		&rec.SerialNumber,
		&subjectEmail,
		&rec.Fingerprint,
		&algorithms,
		&algorithmsUpdated,
		&rec.Raw,
		&sealedKey,
	)
	if err != nil {
		return nil, err
	}

	rec.Trusted = trusted != 0
	rec.KeyUsage = x509.KeyUsage(keyUsage)
	rec.NotBefore = ticksToTime(notBefore)
	rec.NotAfter = ticksToTime(notAfter)
	rec.AlgorithmsUpdated = ticksToTime(algorithmsUpdated)
	if subjectEmail.Valid {
		rec.SubjectEmail = subjectEmail.String
	}
	if algorithms.Valid && algorithms.String != "" {
		rec.Algorithms = strings.Split(algorithms.String, ",")
	}
	if len(sealedKey) > 0 {
		key, err := openPrivateKey(s.password, sealedKey)
		if err != nil {
			return nil, err
		}
		rec.PrivateKey = key
	}
	return &rec, nil
}

// certificateArgs builds the bind arguments for an insert, in canonical
// column order (without ID).
func (s *Store) certificateArgs(rec *CertificateRecord) ([]any, error) {
	sealedKey, err := s.sealedKey(rec)
	if err != nil {
		return nil, err
	}
	return []any{
		boolToInt(rec.Trusted),
		int64(rec.KeyUsage),
		rec.BasicConstraints,
		timeToTicks(rec.NotBefore),
		timeToTicks(rec.NotAfter),
		rec.IssuerName,
		rec.SerialNumber,
		nullableText(rec.SubjectEmail),
		rec.Fingerprint,
		nullableText(strings.Join(rec.Algorithms, ",")),
		timeToTicks(rec.AlgorithmsUpdated),
		rec.Raw,
		sealedKey,
	}, nil
}

// sealedKey seals the record's private key under the store password, or
// returns nil when the record carries no key.
func (s *Store) sealedKey(rec *CertificateRecord) ([]byte, error) {
	if rec.PrivateKey == nil {
		return nil, nil
	}
	return sealPrivateKey(s.password, rec.PrivateKey)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// nullableText maps the empty string to NULL for optional text columns.
func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// placeholders returns "?, ?, ..." with n slots.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
