package truststore

import (
	"context"
	"database/sql"
	"strings"
)

// Table names for the persisted trust store layout.
const (
	certificatesTable = "CERTIFICATES"
	crlsTable         = "CRLS"
)

// certificateColumns is the canonical column order for the CERTIFICATES
// table. The create statement is generated by walking this slice, so the
// statement text is byte-stable for a given column list.
var certificateColumns = []string{
	"ID",
	"TRUSTED",
	"KEYUSAGE",
	"BASICCONSTRAINTS",
	"NOTBEFORE",
	"NOTAFTER",
	"ISSUERNAME",
	"SERIALNUMBER",
	"SUBJECTEMAIL",
	"FINGERPRINT",
	"ALGORITHMS",
	"ALGORITHMSUPDATED",
	"CERTIFICATE",
	"PRIVATEKEY",
}

// crlColumns is the canonical column order for the CRLS table.
var crlColumns = []string{
	"ID",
	"DELTA",
	"ISSUERNAME",
	"THISUPDATE",
	"NEXTUPDATE",
	"CRL",
}

// columnTypes maps each column to its type and constraint clause. Integer
// and raw-object columns are NOT NULL; the raw certificate additionally
// carries the table's uniqueness constraint. SUBJECTEMAIL, ALGORITHMS and
// PRIVATEKEY are the only nullable columns.
var columnTypes = map[string]string{
	"ID":                "INTEGER PRIMARY KEY AUTOINCREMENT",
	"TRUSTED":           "INTEGER NOT NULL",
	"KEYUSAGE":          "INTEGER NOT NULL",
	"BASICCONSTRAINTS":  "INTEGER NOT NULL",
	"NOTBEFORE":         "INTEGER NOT NULL",
	"NOTAFTER":          "INTEGER NOT NULL",
	"ISSUERNAME":        "TEXT NOT NULL",
	"SERIALNUMBER":      "TEXT NOT NULL",
	"SUBJECTEMAIL":      "TEXT",
	"FINGERPRINT":       "TEXT NOT NULL",
	"ALGORITHMS":        "TEXT",
	"ALGORITHMSUPDATED": "INTEGER NOT NULL",
	"CERTIFICATE":       "BLOB UNIQUE NOT NULL",
	"PRIVATEKEY":        "BLOB",
	"DELTA":             "INTEGER NOT NULL",
	"THISUPDATE":        "INTEGER NOT NULL",
	"NEXTUPDATE":        "INTEGER NOT NULL",
	"CRL":               "BLOB NOT NULL",
}

// createTableStatement builds the idempotent create statement for a table
// from its canonical column list. Running the statement against an
// already-initialized database is a no-op; it never alters existing rows.
// There is no ALTER path: schema evolution is out of scope.
func createTableStatement(table string, columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(table)
	b.WriteString(" (")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteByte(' ')
		b.WriteString(columnTypes[col])
	}
	b.WriteByte(')')
	return b.String()
}

// CreateCertificatesTableStatement returns the exact statement text used to
// ensure the CERTIFICATES table exists.
func CreateCertificatesTableStatement() string {
	return createTableStatement(certificatesTable, certificateColumns)
}

// CreateCrlsTableStatement returns the exact statement text used to ensure
// the CRLS table exists.
func CreateCrlsTableStatement() string {
	return createTableStatement(crlsTable, crlColumns)
}

// EnsureSchema creates the CERTIFICATES and CRLS tables if absent. Safe to
// run repeatedly.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return ErrNilConnection
	}
	for _, stmt := range []string{
		CreateCertificatesTableStatement(),
		CreateCrlsTableStatement(),
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return newStorageError("sqlite", "schema", err)
		}
	}
	return nil
}
