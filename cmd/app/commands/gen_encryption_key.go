package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// RunGenEncryptionKey generates a cryptographically secure 32-byte field
// encryption key and prints it as the environment variable the server expects.
// Key material is zeroed from memory after encoding.
//
// For production, wrap the generated key with a KMS keeper and set
// ENCRYPTION_KEY_WRAPPED and KMS_KEY_URI instead of the plain hex key.
func RunGenEncryptionKey(writer io.Writer) error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}

	encoded := hex.EncodeToString(key)

	_, _ = fmt.Fprintln(writer, "# Field Encryption Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy this environment variable to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEY=\"%s\"\n", encoded)

	// Zero out the key from memory
	for i := range key {
		key[i] = 0
	}

	return nil
}
