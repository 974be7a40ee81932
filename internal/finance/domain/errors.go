package domain

import (
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

var (
	// ErrTransactionNotFound indicates the transaction does not exist or
	// belongs to another user.
	ErrTransactionNotFound = apperrors.Wrap(apperrors.ErrNotFound, "transaction not found")

	// ErrBudgetNotFound indicates the budget does not exist or belongs to
	// another user.
	ErrBudgetNotFound = apperrors.Wrap(apperrors.ErrNotFound, "budget not found")

	// ErrBudgetExists indicates a budget for the category and month already
	// exists.
	ErrBudgetExists = apperrors.Wrap(apperrors.ErrConflict, "budget already exists for this category and month")

	// ErrGoalNotFound indicates the goal does not exist or belongs to
	// another user.
	ErrGoalNotFound = apperrors.Wrap(apperrors.ErrNotFound, "goal not found")
)
