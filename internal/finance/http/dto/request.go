// Package dto provides data transfer objects for finance HTTP request and
// response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
	customValidation "github.com/ledgerly/securecore/internal/validation"
)

// TransactionRequest contains the parameters for creating or updating a
// transaction.
type TransactionRequest struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Validate checks if the transaction request is valid. Domain validation
// runs again in the use case; this catches shape errors early.
func (r *TransactionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Type,
			validation.Required,
			validation.In(
				string(financeDomain.TransactionTypeIncome),
				string(financeDomain.TransactionTypeExpense),
			),
		),
		validation.Field(&r.Amount,
			validation.Required,
			validation.Min(0.01),
		),
		validation.Field(&r.Category,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 100),
		),
		validation.Field(&r.Description,
			validation.Length(0, 1000),
		),
		validation.Field(&r.OccurredAt, validation.Required),
	)
}

// BudgetRequest contains the parameters for creating or updating a budget.
type BudgetRequest struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Month    string  `json:"month"`
}

// Validate checks if the budget request is valid.
func (r *BudgetRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Category,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 100),
		),
		validation.Field(&r.Limit,
			validation.Required,
			validation.Min(0.01),
		),
		validation.Field(&r.Month,
			validation.Required,
			validation.Date("2006-01"),
		),
	)
}

// GoalRequest contains the parameters for creating a savings goal.
type GoalRequest struct {
	Name         string     `json:"name"`
	TargetAmount float64    `json:"target_amount"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

// Validate checks if the goal request is valid.
func (r *GoalRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.TargetAmount,
			validation.Required,
			validation.Min(0.01),
		),
	)
}

// ContributeRequest contains a contribution towards a goal.
type ContributeRequest struct {
	Amount float64 `json:"amount"`
}

// Validate checks if the contribute request is valid.
func (r *ContributeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Amount,
			validation.Required,
			validation.Min(0.01),
		),
	)
}
