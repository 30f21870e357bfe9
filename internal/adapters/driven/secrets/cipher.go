package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// blobVersion is the first byte of every sealed credential.
	blobVersion = 0x01

	nonceSize = 12

	// KeySize is the AES-256 key length.
	KeySize = 32
)

var (
	// ErrInvalidKeySize is returned when the encryption key is not 32 bytes.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

	// ErrInvalidBlobSize is returned when the sealed blob is too small.
	ErrInvalidBlobSize = errors.New("sealed credential is too small")

	// ErrUnsupportedVersion is returned when the blob version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported credential blob version")

	// ErrDecryptionFailed is returned on a wrong key, tampered data or a
	// blob sealed for another record.
	ErrDecryptionFailed = errors.New("failed to decrypt credential")
)

// Cipher seals provider credentials with AES-256-GCM.
// Blob format: version(1) || nonce(12) || ciphertext(N).
// The record ID is bound as associated data so a blob cannot be moved
// between rows.
type Cipher struct {
	gcm cipher.AEAD
}

// NewCipher creates a Cipher with the given 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &Cipher{gcm: gcm}, nil
}

// NewCipherFromSecret derives the key from secret and creates a Cipher.
func NewCipherFromSecret(secret string) (*Cipher, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	return NewCipher(key)
}

// Seal encrypts a credential for the record identified by recordID.
func (c *Cipher) Seal(credential, recordID string) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nil, nonce, []byte(credential), []byte(recordID))

	blob := make([]byte, 1+nonceSize+len(ciphertext))
	blob[0] = blobVersion
	copy(blob[1:1+nonceSize], nonce)
	copy(blob[1+nonceSize:], ciphertext)

	return blob, nil
}

// Open decrypts a blob produced by Seal for the same recordID.
func (c *Cipher) Open(blob []byte, recordID string) (string, error) {
	if len(blob) < 1+nonceSize+c.gcm.Overhead() {
		return "", ErrInvalidBlobSize
	}

	if blob[0] != blobVersion {
		return "", fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, blob[0])
	}

	nonce := blob[1 : 1+nonceSize]
	plaintext, err := c.gcm.Open(nil, nonce, blob[1+nonceSize:], []byte(recordID))
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
