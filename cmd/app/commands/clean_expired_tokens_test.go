package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCleanExpiredTokens(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	days := 30

	t.Run("text-output", func(t *testing.T) {
		mockRepo := &mockRefreshTokenRepository{}
		mockRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(100), nil)

		var out bytes.Buffer
		err := cleanExpiredTokens(ctx, mockRepo, logger, &out, days, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully deleted 100 expired token(s)")
		mockRepo.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockRepo := &mockRefreshTokenRepository{}
		mockRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(50), nil)

		var out bytes.Buffer
		err := cleanExpiredTokens(ctx, mockRepo, logger, &out, days, "json")

		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(50), result["count"])
		require.Equal(t, float64(30), result["days"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("invalid-days", func(t *testing.T) {
		mockRepo := &mockRefreshTokenRepository{}
		err := cleanExpiredTokens(ctx, mockRepo, logger, &bytes.Buffer{}, -1, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
	})
}
