package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestVerifyAuditEvents(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success-text", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("VerifySignatures", ctx, 0, 100).Return(100, nil, nil)
		mockUseCase.On("VerifySignatures", ctx, 100, 100).Return(10, nil, nil)

		var out bytes.Buffer
		err := verifyAuditEvents(ctx, mockUseCase, logger, &out, 100, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Audit Event Integrity Verification")
		require.Contains(t, out.String(), "Total Checked:  110")
		require.Contains(t, out.String(), "Status: PASSED")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("VerifySignatures", ctx, 0, 100).Return(10, nil, nil)

		var out bytes.Buffer
		err := verifyAuditEvents(ctx, mockUseCase, logger, &out, 100, "json")

		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(10), result["total_checked"])
		require.Equal(t, true, result["passed"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty-table", func(t *testing.T) {
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("VerifySignatures", ctx, 0, 100).Return(0, nil, nil)

		var out bytes.Buffer
		err := verifyAuditEvents(ctx, mockUseCase, logger, &out, 100, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Status: No audit events found")
	})

	t.Run("invalid-batch-size", func(t *testing.T) {
		err := verifyAuditEvents(ctx, &mockAuditUseCase{}, logger, &bytes.Buffer{}, 0, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "batch-size must be a positive number")
	})

	t.Run("integrity-failure", func(t *testing.T) {
		tampered := uuid.Must(uuid.NewV7())
		mockUseCase := &mockAuditUseCase{}
		mockUseCase.On("VerifySignatures", ctx, 0, 100).Return(10, []uuid.UUID{tampered}, nil)

		var out bytes.Buffer
		err := verifyAuditEvents(ctx, mockUseCase, logger, &out, 100, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed: 1 invalid signature(s)")
		require.Contains(t, out.String(), "WARNING: 1 event(s) failed integrity check!")
		require.Contains(t, out.String(), tampered.String())
	})
}
