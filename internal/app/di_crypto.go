package app

import (
	"context"
	"fmt"
	"sync"

	cryptoService "github.com/ledgerly/securecore/internal/crypto/service"
)

// cryptoComponents holds the field encryption dependencies.
type cryptoComponents struct {
	encryptionKey []byte
	fieldCipher   cryptoService.FieldCipher

	encryptionKeyInit sync.Once
	fieldCipherInit   sync.Once
}

// EncryptionKey returns the 32-byte field encryption key, loaded from the
// environment or unwrapped through the configured KMS keeper.
func (c *Container) EncryptionKey() ([]byte, error) {
	c.encryptionKeyInit.Do(func() {
		key, err := cryptoService.LoadEncryptionKey(context.Background(), c.config)
		if err != nil {
			c.initErrors["encryptionKey"] = fmt.Errorf("failed to load encryption key: %w", err)
			return
		}
		c.encryptionKey = key
	})
	if storedErr, exists := c.initErrors["encryptionKey"]; exists {
		return nil, storedErr
	}
	return c.encryptionKey, nil
}

// FieldCipher returns the field cipher used by repositories to encrypt
// sensitive columns.
func (c *Container) FieldCipher() (cryptoService.FieldCipher, error) {
	c.fieldCipherInit.Do(func() {
		key, err := c.EncryptionKey()
		if err != nil {
			c.initErrors["fieldCipher"] = err
			return
		}
		cipher, err := cryptoService.NewFieldCipher(key)
		if err != nil {
			c.initErrors["fieldCipher"] = fmt.Errorf("failed to create field cipher: %w", err)
			return
		}
		c.fieldCipher = cipher
	})
	if storedErr, exists := c.initErrors["fieldCipher"]; exists {
		return nil, storedErr
	}
	return c.fieldCipher, nil
}
