package truststore

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Sealed private keys are stored as salt || nonce || AES-256-GCM ciphertext
// of the PKCS#8 DER encoding. The AES key is derived from the store
// password with PBKDF2-SHA256; the password itself is never persisted.
const (
	sealSaltSize   = 16
	sealNonceSize  = 12
	sealIterations = 210_000
	sealKeySize    = 32
)

var errSealedTooShort = errors.New("truststore: sealed private key is truncated")

// sealPrivateKey encrypts a private key under the store password.
func sealPrivateKey(password string, key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("encoding private key: %w", err)
	}

	salt := make([]byte, sealSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	aead, err := sealCipher(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, sealNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	sealed := make([]byte, 0, sealSaltSize+sealNonceSize+len(der)+aead.Overhead())
	sealed = append(sealed, salt...)
	sealed = append(sealed, nonce...)
	return aead.Seal(sealed, nonce, der, nil), nil
}

// openPrivateKey decrypts a sealed private key. A wrong password surfaces
// as an authentication failure from GCM, not a parse error.
func openPrivateKey(password string, sealed []byte) (crypto.PrivateKey, error) {
	if len(sealed) < sealSaltSize+sealNonceSize {
		return nil, errSealedTooShort
	}
	salt := sealed[:sealSaltSize]
	nonce := sealed[sealSaltSize : sealSaltSize+sealNonceSize]
	ciphertext := sealed[sealSaltSize+sealNonceSize:]

	aead, err := sealCipher(password, salt)
	if err != nil {
		return nil, err
	}

	der, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("unsealing private key: %w", err)
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}
	return key, nil
}

// sealCipher derives the AES-GCM AEAD for a password and salt.
func sealCipher(password string, salt []byte) (cipher.AEAD, error) {
	derived := pbkdf2.Key([]byte(password), salt, sealIterations, sealKeySize, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
