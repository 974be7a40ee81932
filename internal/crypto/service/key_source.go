package service

import (
	"context"
	"encoding/base64"
	"encoding/hex"

	"gocloud.dev/secrets"

	"github.com/ledgerly/securecore/internal/config"
	apperrors "github.com/ledgerly/securecore/internal/errors"

	// Register KMS provider drivers for keeper URIs.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// LoadEncryptionKey resolves the process-wide field encryption key at startup.
//
// Two sources are supported:
//   - ENCRYPTION_KEY: the key itself, hex-encoded (development and simple deployments)
//   - KMS_KEY_URI + ENCRYPTION_KEY_WRAPPED: the key wrapped by a cloud KMS,
//     unwrapped through a gocloud.dev/secrets keeper
//     (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://)
//
// Either way the result must be exactly 32 bytes. Failures are configuration
// errors and fatal to process startup.
func LoadEncryptionKey(ctx context.Context, cfg *config.Config) ([]byte, error) {
	if cfg.KMSKeyURI != "" {
		return unwrapKey(ctx, cfg.KMSKeyURI, cfg.EncryptionKeyWrapped)
	}

	key, err := hex.DecodeString(cfg.EncryptionKeyHex)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "ENCRYPTION_KEY must be hex-encoded")
	}
	if len(key) != 32 {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "ENCRYPTION_KEY must decode to exactly 32 bytes")
	}

	return key, nil
}

// unwrapKey opens the configured keeper and decrypts the wrapped key material.
func unwrapKey(ctx context.Context, keyURI, wrapped string) ([]byte, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "failed to open KMS keeper")
	}
	defer keeper.Close()

	ciphertext, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "ENCRYPTION_KEY_WRAPPED must be base64-encoded")
	}

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "failed to unwrap encryption key")
	}
	if len(key) != 32 {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "unwrapped encryption key must be exactly 32 bytes")
	}

	return key, nil
}
