package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ledgerly/securecore/internal/app"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	"github.com/ledgerly/securecore/internal/config"
)

// RunCleanAuditEvents deletes audit events older than the specified number of
// days. This is the only deletion path for audit events; the application
// itself never removes them.
//
// Requirements: Database must be migrated and accessible.
func RunCleanAuditEvents(ctx context.Context, days int, format string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	auditUseCase, err := container.AuditUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit use case: %w", err)
	}

	return cleanAuditEvents(ctx, auditUseCase, logger, os.Stdout, days, format)
}

// cleanAuditEvents performs the deletion and writes the result to the given
// writer.
func cleanAuditEvents(
	ctx context.Context,
	auditUseCase authUseCase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning audit events", slog.Int("days", days))

	before := time.Now().UTC().AddDate(0, 0, -days)
	count, err := auditUseCase.DeleteOlderThan(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to delete audit events: %w", err)
	}

	if format == "json" {
		if err := outputCleanJSON(writer, count, days); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d audit event(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	return nil
}
