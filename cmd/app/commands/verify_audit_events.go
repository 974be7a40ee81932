package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/ledgerly/securecore/internal/app"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	"github.com/ledgerly/securecore/internal/config"
)

// verifyReport aggregates the outcome of a signature verification sweep.
type verifyReport struct {
	TotalChecked int
	InvalidCount int
	InvalidIDs   []uuid.UUID
}

// RunVerifyAuditEvents re-checks the HMAC signatures of stored audit events in
// pages, reporting any event whose signature no longer matches its content.
// Returns an error when at least one signature fails, so operators can alert
// on the exit code.
//
// Requirements: Database must be migrated and the encryption key loaded.
func RunVerifyAuditEvents(ctx context.Context, batchSize int, format string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	auditUseCase, err := container.AuditUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit use case: %w", err)
	}

	return verifyAuditEvents(ctx, auditUseCase, logger, os.Stdout, batchSize, format)
}

// verifyAuditEvents pages through stored events and writes the report to the
// given writer.
func verifyAuditEvents(
	ctx context.Context,
	auditUseCase authUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
	format string,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be a positive number, got: %d", batchSize)
	}

	logger.Info("verifying audit event signatures", slog.Int("batch_size", batchSize))

	report := &verifyReport{}
	for offset := 0; ; offset += batchSize {
		checked, invalid, err := auditUseCase.VerifySignatures(ctx, offset, batchSize)
		if err != nil {
			return fmt.Errorf("failed to verify audit events: %w", err)
		}

		report.TotalChecked += checked
		report.InvalidCount += len(invalid)
		report.InvalidIDs = append(report.InvalidIDs, invalid...)

		// A short page means the sweep reached the end of the table.
		if checked < batchSize {
			break
		}
	}

	if format == "json" {
		if err := outputVerifyJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, report)
	}

	logger.Info("verification completed",
		slog.Int("total_checked", report.TotalChecked),
		slog.Int("invalid", report.InvalidCount),
	)

	if report.InvalidCount > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", report.InvalidCount)
	}

	return nil
}

// outputVerifyText outputs the verification result in human-readable text
// format.
func outputVerifyText(writer io.Writer, report *verifyReport) {
	_, _ = fmt.Fprintf(writer, "Audit Event Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "==================================\n\n")
	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.TotalChecked)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n\n", report.InvalidCount)

	switch {
	case report.InvalidCount > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d event(s) failed integrity check!\n\n", report.InvalidCount)
		_, _ = fmt.Fprintf(writer, "Invalid Event IDs:\n")
		for _, id := range report.InvalidIDs {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case report.TotalChecked == 0:
		_, _ = fmt.Fprintf(writer, "Status: No audit events found\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

// outputVerifyJSON outputs the verification result in JSON format for machine
// consumption.
func outputVerifyJSON(writer io.Writer, report *verifyReport) error {
	invalidIDs := make([]string, 0, len(report.InvalidIDs))
	for _, id := range report.InvalidIDs {
		invalidIDs = append(invalidIDs, id.String())
	}

	result := map[string]interface{}{
		"total_checked": report.TotalChecked,
		"invalid_count": report.InvalidCount,
		"invalid_ids":   invalidIDs,
		"passed":        report.InvalidCount == 0,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
