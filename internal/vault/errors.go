package vault

import "errors"

var (
	// ErrNotConfigured is returned when the master secret is missing or empty.
	// This is an operator problem, not a caller problem, and must be
	// distinguishable from input and cipher failures.
	ErrNotConfigured = errors.New("vault is not configured: master secret is missing or empty")

	// ErrInvalidInput is returned for malformed input: empty plaintext on
	// encrypt, or missing/undecodable/wrong-length fields on decrypt.
	ErrInvalidInput = errors.New("invalid vault input")

	// ErrEncryptionFailed is returned for cipher-level failures during encryption.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrDecryptionFailed is returned when decryption fails. A wrong master
	// secret and tampered ciphertext produce the same error so callers cannot
	// tell the two apart.
	ErrDecryptionFailed = errors.New("decryption failed")
)
