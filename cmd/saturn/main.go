// Saturn is a persistent trust store for X.509 certificates, CRLs, and
// encrypted private keys, backed by SQLite.
//
// It resolves a working SQLite binding at startup (native cgo binding
// preferred, pure Go fallback), so the same binary runs on targets with
// and without cgo support.
//
// Usage:
//
//	# Create the store and its schema
//	saturn init
//
//	# Show which SQLite binding was resolved
//	saturn backend
//
//	# Import certificates and CRLs from files
//	saturn import ca.pem intermediate.crt list.crl
//
//	# List stored certificates
//	saturn list --trusted
//
//	# Mark a certificate as a trust anchor
//	saturn trust <fingerprint>
//
//	# Run the import watcher and maintenance janitor
//	saturn run
//
// The store password is read from SATURN_STORE_PASSWORD or from the file
// named by store.password_file in the configuration.
package main

func main() {
	Execute()
}
