// Package importer feeds a trust store from a drop directory: PEM or DER
// certificate and CRL files placed there are parsed and inserted, then the
// watcher waits for more.
package importer

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/truststore"
)

// importExtensions lists the file suffixes the watcher considers.
var importExtensions = []string{".pem", ".crt", ".cer", ".der", ".crl"}

// Importer watches a drop directory and imports certificate and CRL files
// into the store.
type Importer struct {
	store    *truststore.Store
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates an importer for the given store and drop directory. The
// debounce interval gives writers time to finish before a file is read;
// zero selects a 200ms default.
func New(store *truststore.Store, dir string, debounce time.Duration) *Importer {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Importer{
		store:    store,
		dir:      dir,
		debounce: debounce,
		logger:   slog.Default().With("component", "truststore.importer"),
	}
}

// Watch blocks, importing files as they appear in the drop directory, until
// the context is cancelled. The directory is created if missing and scanned
// once before watching, so files dropped while Saturn was down are not
// lost.
func (im *Importer) Watch(ctx context.Context) error {
	if err := os.MkdirAll(im.dir, 0o755); err != nil {
		return fmt.Errorf("creating drop directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(im.dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", im.dir, err)
	}

	if err := im.ScanOnce(ctx); err != nil {
		im.logger.Warn("initial drop directory scan failed", "error", err)
	}

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !importable(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(im.debounce)
			} else {
				timer.Reset(im.debounce)
			}
			timerC = timer.C

		case <-timerC:
			batch := uuid.NewString()
			for path := range pending {
				im.importFile(ctx, batch, path)
				delete(pending, path)
			}
			timerC = nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			im.logger.Warn("watcher error", "error", err)
		}
	}
}

// ScanOnce imports every importable file currently in the drop directory.
func (im *Importer) ScanOnce(ctx context.Context) error {
	entries, err := os.ReadDir(im.dir)
	if err != nil {
		return err
	}

	batch := uuid.NewString()
	for _, entry := range entries {
		if entry.IsDir() || !importable(entry.Name()) {
			continue
		}
		im.importFile(ctx, batch, filepath.Join(im.dir, entry.Name()))
	}
	return nil
}

// importFile imports one dropped file, logging instead of failing so a bad
// file never stops the watcher.
func (im *Importer) importFile(ctx context.Context, batch, path string) {
	logger := im.logger.With("batch", batch, "file", path)

	n, err := ImportFile(ctx, im.store, path, false)
	if err != nil {
		logger.Warn("import failed", "error", err)
		return
	}
	logger.Info("file imported", "inserted", n)
}

// ImportFile parses one PEM or DER file and inserts its certificates and
// CRLs into the store, skipping records already present. Certificates are
// deduplicated by fingerprint, CRLs by raw bytes; rescanning the same file
// inserts nothing. When trusted is set, imported certificates are marked as
// trust anchors. Returns the number of records inserted.
func ImportFile(ctx context.Context, store *truststore.Store, path string, trusted bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	certs, crls, err := parse(data)
	if err != nil {
		return 0, err
	}

	var imported int
	for _, cert := range certs {
		rec := truststore.NewCertificateRecord(cert)
		rec.Trusted = trusted
		_, err := store.FindCertificateByFingerprint(ctx, rec.Fingerprint)
		if err == nil {
			continue
		}
		if !errors.Is(err, truststore.ErrNotFound) {
			return imported, err
		}
		if _, err := store.InsertCertificate(ctx, rec); err != nil {
			return imported, err
		}
		imported++
	}
	for _, rl := range crls {
		exists, err := store.ContainsCRL(ctx, rl.Raw)
		if err != nil {
			return imported, err
		}
		if exists {
			continue
		}
		if _, err := store.InsertCRL(ctx, truststore.NewCRLRecord(rl)); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// parse extracts certificates and CRLs from PEM data, falling back to a
// bare DER certificate or CRL.
func parse(data []byte) ([]*x509.Certificate, []*x509.RevocationList, error) {
	var certs []*x509.Certificate
	var crls []*x509.RevocationList

	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		switch block.Type {
		case "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("parsing certificate block: %w", err)
			}
			certs = append(certs, cert)
		case "X509 CRL":
			rl, err := x509.ParseRevocationList(block.Bytes)
			if err != nil {
				return nil, nil, fmt.Errorf("parsing crl block: %w", err)
			}
			crls = append(crls, rl)
		}
	}
	if len(certs) > 0 || len(crls) > 0 {
		return certs, crls, nil
	}

	// Not PEM; try raw DER.
	if cert, err := x509.ParseCertificate(data); err == nil {
		return []*x509.Certificate{cert}, nil, nil
	}
	if rl, err := x509.ParseRevocationList(data); err == nil {
		return nil, []*x509.RevocationList{rl}, nil
	}
	return nil, nil, errors.New("no certificate or crl found")
}

// importable reports whether a file name carries one of the recognized
// extensions.
func importable(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range importExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
