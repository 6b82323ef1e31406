// Package crypto provides the cryptographic primitives for Mapping.
// It implements AES-256-GCM for symmetric encryption and PBKDF2-SHA256
// for password hashing.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of AES-256 keys in bytes.
	KeySize = 32

	// IVSize is the size of GCM initialization vectors in bytes.
	IVSize = 12

	// TagSize is the size of GCM authentication tags in bytes.
	TagSize = 16

	// SaltSize is the size of password salts in bytes.
	SaltSize = 16

	// HashSize is the size of derived password hashes in bytes.
	HashSize = 32

	// PBKDF2Iterations is the iteration count for password hashing.
	PBKDF2Iterations = 100_000
)

var (
	// ErrInvalidKeySize is returned when a key has an incorrect size.
	ErrInvalidKeySize = errors.New("key must be 32 bytes")

	// ErrMalformedBlob is returned when an encrypted blob is structurally invalid.
	ErrMalformedBlob = errors.New("malformed encrypted blob")

	// ErrDecryptionFailed is returned when decryption fails (authentication error).
	ErrDecryptionFailed = errors.New("decryption failed: authentication error")
)

// Blob is the result of authenticated encryption. The IV and ciphertext are
// stored as independent fields so each is recoverable on its own.
type Blob struct {
	IV         []byte `json:"iv"`
	Ciphertext []byte `json:"ciphertext"`
}

// Record is a salted password hash produced by HashPassword.
type Record struct {
	Salt []byte `json:"salt"`
	Hash []byte `json:"hash"`
}

// Encrypt encrypts plaintext with AES-256-GCM under a fresh random IV.
// The ciphertext includes the GCM authentication tag.
func Encrypt(key, plaintext []byte) (*Blob, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	return &Blob{
		IV:         iv,
		Ciphertext: gcm.Seal(nil, iv, plaintext, nil),
	}, nil
}

// Decrypt decrypts a blob produced by Encrypt. It returns ErrMalformedBlob
// when the IV or ciphertext have impossible sizes and ErrDecryptionFailed
// when authentication fails (tampering or wrong key).
func Decrypt(key []byte, blob *Blob) ([]byte, error) {
	if blob == nil || len(blob.IV) != IVSize || len(blob.Ciphertext) < TagSize {
		return nil, ErrMalformedBlob
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, blob.IV, blob.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// GenerateKey generates a cryptographically secure random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// GenerateSalt generates a cryptographically secure random 16-byte salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// HashPassword hashes a password with PBKDF2-SHA256 under a fresh random salt.
func HashPassword(password string) (*Record, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	return &Record{
		Salt: salt,
		Hash: pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, HashSize, sha256.New),
	}, nil
}

// VerifyPassword recomputes the derivation with the stored salt and compares
// the full derived output in constant time. A wrong password returns false,
// never an error.
func VerifyPassword(password string, record *Record) bool {
	if record == nil || len(record.Salt) != SaltSize || len(record.Hash) != HashSize {
		return false
	}
	computed := pbkdf2.Key([]byte(password), record.Salt, PBKDF2Iterations, HashSize, sha256.New)
	return subtle.ConstantTimeCompare(record.Hash, computed) == 1
}

// EncodeKey encodes a key to base64 for persistence.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKey decodes a base64-encoded key persisted by EncodeKey.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return key, nil
}

// ZeroBytes zeros a byte slice. Use this to clear sensitive data from memory.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
