package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// With a key, values are encrypted with AES-256-GCM before write and decrypted
// after read. Without one they are stored as plaintext, and rows written
// encrypted by an earlier run cannot be read (ErrEncryptionKeyNotSet).
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores plaintext.
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes or nil.
func NewCredentialRepo(db *DB, key []byte) (*CredentialRepo, error) {
	if key != nil && len(key) != 32 {
		return nil, fmt.Errorf("credential key must be 32 bytes, got %d", len(key))
	}
	return &CredentialRepo{db: db, key: key}, nil
}

// Set stores or replaces the credential origin/name with the provided plaintext value.
func (r *CredentialRepo) Set(ctx context.Context, origin, name, plaintext string) error {
	value, encrypted := plaintext, false
	if r.key != nil {
		sealed, err := r.encrypt(plaintext)
		if err != nil {
			return err
		}
		value, encrypted = sealed, true
	}

	const query = `INSERT INTO credentials (origin, name, value, encrypted, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (origin, name) DO UPDATE SET
			value = excluded.value,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at`
	_, err := r.db.Writer.ExecContext(ctx, query, origin, name, value, encrypted)
	if err != nil {
		return fmt.Errorf("set credential %q for %s: %w", name, origin, err)
	}
	return nil
}

// Get retrieves the plaintext credential origin/name.
// Returns ("", nil) if no credential exists.
func (r *CredentialRepo) Get(ctx context.Context, origin, name string) (string, error) {
	const query = `SELECT value, encrypted FROM credentials WHERE origin = ? AND name = ?`
	var stored string
	var encrypted bool
	err := r.db.Reader.QueryRowContext(ctx, query, origin, name).Scan(&stored, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential %q for %s: %w", name, origin, err)
	}

	plaintext, err := r.open(stored, encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt credential %q for %s: %w", name, origin, err)
	}
	return plaintext, nil
}

// Delete removes the credential origin/name.
func (r *CredentialRepo) Delete(ctx context.Context, origin, name string) error {
	const query = `DELETE FROM credentials WHERE origin = ? AND name = ?`
	_, err := r.db.Writer.ExecContext(ctx, query, origin, name)
	if err != nil {
		return fmt.Errorf("delete credential %q for %s: %w", name, origin, err)
	}
	return nil
}

func (r *CredentialRepo) open(stored string, encrypted bool) (string, error) {
	if !encrypted {
		return stored, nil
	}
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}
	return r.decrypt(stored)
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *CredentialRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
