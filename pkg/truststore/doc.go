// Package truststore persists X.509 certificates, certificate revocation
// lists, and sealed private keys in a SQLite database.
//
// # Overview
//
// The store runs on whichever SQLite binding the backend resolver selects
// at process start (see mercator-hq/saturn/pkg/truststore/backend), so a
// single binary works across deployment targets with and without cgo.
// Opening a store provisions the database file, including first-time
// creation of parent directories, and ensures the two tables exist:
//
//   - CERTIFICATES: one row per certificate, holding the trust flag,
//     key-usage bitmask, basic constraints, validity window, issuer,
//     serial, optional subject email, fingerprint, optional
//     supported-algorithms list, the raw DER (unique), and an optional
//     sealed private key.
//   - CRLS: one row per revocation list, holding the delta flag, issuer,
//     this-update and next-update times, and the raw DER.
//
// Table creation is idempotent; there is no ALTER-based migration path.
//
// # Timestamps
//
// Every time column stores integral ticks (UTC Unix nanoseconds) rather
// than the driver's text format, so values round-trip exactly regardless of
// which backend was resolved.
//
// # Usage
//
//	store, err := truststore.Open("certs.db", password)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec := truststore.NewCertificateRecord(cert)
//	rec.Trusted = true
//	id, err := store.InsertCertificate(ctx, rec)
//
// Private keys attached to a record are encrypted with AES-256-GCM under a
// key derived from the store password before they touch disk; the password
// itself is never persisted.
package truststore
