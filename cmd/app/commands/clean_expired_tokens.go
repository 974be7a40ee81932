package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ledgerly/securecore/internal/app"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	"github.com/ledgerly/securecore/internal/config"
)

// RunCleanExpiredTokens deletes refresh token records whose expiry passed more
// than the specified number of days ago. Supports both text and JSON output.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredTokens(ctx context.Context, days int, format string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	repo, err := container.RefreshTokenRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize refresh token repository: %w", err)
	}

	return cleanExpiredTokens(ctx, repo, logger, os.Stdout, days, format)
}

// cleanExpiredTokens performs the deletion and writes the result to the given
// writer.
func cleanExpiredTokens(
	ctx context.Context,
	repo authUseCase.RefreshTokenRepository,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning expired refresh tokens", slog.Int("days", days))

	before := time.Now().UTC().AddDate(0, 0, -days)
	count, err := repo.DeleteExpired(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	if format == "json" {
		if err := outputCleanJSON(writer, count, days); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d expired token(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	return nil
}

// outputCleanJSON outputs a cleanup result in JSON format for machine
// consumption.
func outputCleanJSON(writer io.Writer, count int64, days int) error {
	result := map[string]interface{}{
		"count": count,
		"days":  days,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
