package dto

import (
	"time"

	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapTransactionToResponse converts a domain transaction to an API response.
func MapTransactionToResponse(tx *financeDomain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID.String(),
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Category:    tx.Category,
		Description: tx.Description,
		OccurredAt:  tx.OccurredAt,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

// BudgetResponse represents a budget in API responses.
type BudgetResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Limit     float64   `json:"limit"`
	Month     string    `json:"month"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapBudgetToResponse converts a domain budget to an API response.
func MapBudgetToResponse(budget *financeDomain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        budget.ID.String(),
		Category:  budget.Category,
		Limit:     budget.Limit,
		Month:     budget.Month,
		CreatedAt: budget.CreatedAt,
		UpdatedAt: budget.UpdatedAt,
	}
}

// BudgetStatusResponse reports spending against one budget.
type BudgetStatusResponse struct {
	Budget    BudgetResponse `json:"budget"`
	Spent     float64        `json:"spent"`
	Remaining float64        `json:"remaining"`
	Exceeded  bool           `json:"exceeded"`
}

// MapBudgetStatusToResponse converts a domain budget status to an API
// response.
func MapBudgetStatusToResponse(status *financeDomain.BudgetStatus) BudgetStatusResponse {
	return BudgetStatusResponse{
		Budget:    MapBudgetToResponse(status.Budget),
		Spent:     status.Spent,
		Remaining: status.Remaining,
		Exceeded:  status.Exceeded,
	}
}

// GoalResponse represents a savings goal in API responses.
type GoalResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Progress      float64    `json:"progress"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MapGoalToResponse converts a domain goal to an API response.
func MapGoalToResponse(goal *financeDomain.Goal) GoalResponse {
	return GoalResponse{
		ID:            goal.ID.String(),
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Progress:      goal.Progress(),
		Deadline:      goal.Deadline,
		CreatedAt:     goal.CreatedAt,
		UpdatedAt:     goal.UpdatedAt,
	}
}
