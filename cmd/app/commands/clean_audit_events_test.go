package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCleanAuditEvents(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	days := 90

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).Return(int64(200), nil)

		var out bytes.Buffer
		err := cleanAuditEvents(ctx, mockUseCase, logger, &out, days, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully deleted 200 audit event(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).Return(int64(25), nil)

		var out bytes.Buffer
		err := cleanAuditEvents(ctx, mockUseCase, logger, &out, days, "json")

		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(25), result["count"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-days", func(t *testing.T) {
		err := cleanAuditEvents(ctx, &mockAuditUseCase{}, logger, &bytes.Buffer{}, -1, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
	})

	t.Run("delete-error", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).
			Return(int64(0), errors.New("boom"))

		err := cleanAuditEvents(ctx, mockUseCase, logger, &bytes.Buffer{}, days, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to delete audit events")
	})
}
