package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ledgerly/securecore/internal/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// ParsePagination reads the offset and limit query parameters. The limit is
// capped at 100: every list endpoint decrypts its ciphertext columns row by
// row, so unbounded pages would turn a single request into a bulk decryption
// job.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = positiveIntQuery(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}

	limit, err = positiveIntQuery(c, "limit", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > maxPageSize {
		return 0, 0, apperrors.Wrap(apperrors.ErrInvalidInput,
			"invalid limit parameter: must be between 1 and 100")
	}

	return offset, limit, nil
}

func positiveIntQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput,
			"invalid "+name+" parameter: must be a non-negative integer")
	}
	return value, nil
}
