package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	"github.com/ledgerly/securecore/internal/config"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

func TestLoadEncryptionKey_FromHex(t *testing.T) {
	t.Run("ValidKey", func(t *testing.T) {
		raw := make([]byte, 32)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		cfg := &config.Config{EncryptionKeyHex: hex.EncodeToString(raw)}
		key, err := LoadEncryptionKey(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, raw, key)
	})

	t.Run("NotHex", func(t *testing.T) {
		cfg := &config.Config{EncryptionKeyHex: strings.Repeat("zz", 32)}
		_, err := LoadEncryptionKey(context.Background(), cfg)
		assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
	})

	t.Run("WrongLength", func(t *testing.T) {
		cfg := &config.Config{EncryptionKeyHex: "abcd"}
		_, err := LoadEncryptionKey(context.Background(), cfg)
		assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
	})
}

func TestLoadEncryptionKey_FromKeeper(t *testing.T) {
	ctx := context.Background()

	// Wrap a fresh key with the local keeper, the way an operator would with a
	// real KMS, then verify the startup path unwraps it.
	kekRaw := make([]byte, 32)
	_, err := rand.Read(kekRaw)
	require.NoError(t, err)
	keeperURI := "base64key://" + base64.URLEncoding.EncodeToString(kekRaw)

	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	require.NoError(t, err)
	defer keeper.Close()

	fieldKey := make([]byte, 32)
	_, err = rand.Read(fieldKey)
	require.NoError(t, err)

	wrapped, err := keeper.Encrypt(ctx, fieldKey)
	require.NoError(t, err)

	t.Run("UnwrapsKey", func(t *testing.T) {
		cfg := &config.Config{
			KMSKeyURI:            keeperURI,
			EncryptionKeyWrapped: base64.StdEncoding.EncodeToString(wrapped),
		}

		key, err := LoadEncryptionKey(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, fieldKey, key)
	})

	t.Run("BadBase64", func(t *testing.T) {
		cfg := &config.Config{
			KMSKeyURI:            keeperURI,
			EncryptionKeyWrapped: "%%%not-base64%%%",
		}

		_, err := LoadEncryptionKey(ctx, cfg)
		assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
	})
}
