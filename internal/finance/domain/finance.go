// Package domain defines the core entities for personal finance data:
// transactions, budgets, and savings goals. Monetary amounts and free-text
// descriptions are encrypted at rest; validation always runs here, against
// plaintext, before any field reaches the persistence layer.
package domain

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/ledgerly/securecore/internal/validation"
)

// TransactionType classifies a transaction as money in or money out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction is a single dated money movement.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the transaction against business rules.
func (t *Transaction) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Type,
			validation.Required,
			validation.In(TransactionTypeIncome, TransactionTypeExpense),
		),
		validation.Field(&t.Amount,
			validation.Required,
			validation.Min(0.01),
		),
		validation.Field(&t.Category,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 100),
		),
		validation.Field(&t.Description,
			validation.Length(0, 1000),
		),
		validation.Field(&t.OccurredAt, validation.Required),
	)
}

// Budget caps spending for a category in a given month.
type Budget struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Category  string    `json:"category"`
	Limit     float64   `json:"limit"`
	Month     string    `json:"month"` // YYYY-MM
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the budget against business rules.
func (b *Budget) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Category,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 100),
		),
		validation.Field(&b.Limit,
			validation.Required,
			validation.Min(0.01),
		),
		validation.Field(&b.Month,
			validation.Required,
			validation.Date("2006-01"),
		),
	)
}

// BudgetStatus reports spending against a budget's limit.
type BudgetStatus struct {
	Budget    *Budget `json:"budget"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Exceeded  bool    `json:"exceeded"`
}

// Goal is a savings target with optional deadline.
type Goal struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate checks the goal against business rules.
func (g *Goal) Validate() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&g.TargetAmount,
			validation.Required,
			validation.Min(0.01),
		),
		validation.Field(&g.CurrentAmount,
			validation.Min(0.0),
		),
	)
}

// Progress reports how far along the goal is, in [0, 1].
func (g *Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	progress := g.CurrentAmount / g.TargetAmount
	if progress > 1 {
		return 1
	}
	return progress
}
