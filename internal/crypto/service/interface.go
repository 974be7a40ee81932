// Package service provides the cryptographic services behind field-level
// encryption: an AES-256-GCM field cipher and the key source that loads the
// process-wide encryption key from the environment or a KMS keeper.
package service

// FieldCipher defines the interface for transparent field-level encryption.
// Implementations must generate a fresh random nonce per encryption so that
// equal plaintexts never produce equal ciphertexts. The resulting ciphertext
// is self-describing: it carries its own nonce and needs no external state
// to decrypt.
type FieldCipher interface {
	// Encrypt encrypts a plaintext string and returns a printable
	// "hex(nonce):hex(ciphertext)" representation.
	Encrypt(plaintext string) (string, error)

	// Decrypt reverses Encrypt. Input without the delimiter is treated as
	// already-plaintext and returned unchanged (backward-compatibility
	// passthrough for data written before encryption was enabled).
	Decrypt(ciphertext string) (string, error)

	// EncryptAmount encodes a numeric amount to its decimal string form and
	// encrypts it.
	EncryptAmount(amount float64) (string, error)

	// DecryptAmount decrypts and parses a numeric amount. A value that
	// decrypts but does not parse as a number yields 0.
	DecryptAmount(ciphertext string) (float64, error)
}
