package app

import (
	"fmt"
	"sync"

	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	financeHTTP "github.com/ledgerly/securecore/internal/finance/http"
	financeRepository "github.com/ledgerly/securecore/internal/finance/repository"
	financeUseCase "github.com/ledgerly/securecore/internal/finance/usecase"
)

// financeComponents holds the transaction, budget, and goal dependencies.
type financeComponents struct {
	transactionRepo financeUseCase.TransactionRepository
	budgetRepo      financeUseCase.BudgetRepository
	goalRepo        financeUseCase.GoalRepository

	financeUseCase financeUseCase.FinanceUseCase

	transactionHandler *financeHTTP.TransactionHandler
	budgetHandler      *financeHTTP.BudgetHandler
	goalHandler        *financeHTTP.GoalHandler

	transactionRepoInit    sync.Once
	budgetRepoInit         sync.Once
	goalRepoInit           sync.Once
	financeUseCaseInit     sync.Once
	transactionHandlerInit sync.Once
	budgetHandlerInit      sync.Once
	goalHandlerInit        sync.Once
}

// TransactionRepository returns the transaction repository based on the
// database driver.
func (c *Container) TransactionRepository() (financeUseCase.TransactionRepository, error) {
	c.transactionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["transactionRepo"] = fmt.Errorf(
				"failed to get database for transaction repository: %w", err)
			return
		}
		cipher, err := c.FieldCipher()
		if err != nil {
			c.initErrors["transactionRepo"] = fmt.Errorf(
				"failed to get field cipher for transaction repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.transactionRepo = financeRepository.NewPostgreSQLTransactionRepository(db, cipher)
		case "mysql":
			c.transactionRepo = financeRepository.NewMySQLTransactionRepository(db, cipher)
		default:
			c.initErrors["transactionRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["transactionRepo"]; exists {
		return nil, storedErr
	}
	return c.transactionRepo, nil
}

// BudgetRepository returns the budget repository based on the database driver.
func (c *Container) BudgetRepository() (financeUseCase.BudgetRepository, error) {
	c.budgetRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["budgetRepo"] = fmt.Errorf("failed to get database for budget repository: %w", err)
			return
		}
		cipher, err := c.FieldCipher()
		if err != nil {
			c.initErrors["budgetRepo"] = fmt.Errorf("failed to get field cipher for budget repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.budgetRepo = financeRepository.NewPostgreSQLBudgetRepository(db, cipher)
		case "mysql":
			c.budgetRepo = financeRepository.NewMySQLBudgetRepository(db, cipher)
		default:
			c.initErrors["budgetRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["budgetRepo"]; exists {
		return nil, storedErr
	}
	return c.budgetRepo, nil
}

// GoalRepository returns the goal repository based on the database driver.
func (c *Container) GoalRepository() (financeUseCase.GoalRepository, error) {
	c.goalRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["goalRepo"] = fmt.Errorf("failed to get database for goal repository: %w", err)
			return
		}
		cipher, err := c.FieldCipher()
		if err != nil {
			c.initErrors["goalRepo"] = fmt.Errorf("failed to get field cipher for goal repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.goalRepo = financeRepository.NewPostgreSQLGoalRepository(db, cipher)
		case "mysql":
			c.goalRepo = financeRepository.NewMySQLGoalRepository(db, cipher)
		default:
			c.initErrors["goalRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["goalRepo"]; exists {
		return nil, storedErr
	}
	return c.goalRepo, nil
}

// FinanceUseCase returns the finance use case, decorated with business
// metrics.
func (c *Container) FinanceUseCase() (financeUseCase.FinanceUseCase, error) {
	c.financeUseCaseInit.Do(func() {
		useCase, err := c.initFinanceUseCase()
		if err != nil {
			c.initErrors["financeUseCase"] = err
			return
		}
		c.financeUseCase = useCase
	})
	if storedErr, exists := c.initErrors["financeUseCase"]; exists {
		return nil, storedErr
	}
	return c.financeUseCase, nil
}

// TransactionHandler returns the transaction HTTP handler.
func (c *Container) TransactionHandler() (*financeHTTP.TransactionHandler, error) {
	c.transactionHandlerInit.Do(func() {
		useCase, auditUseCase, err := c.financeHandlerDeps()
		if err != nil {
			c.initErrors["transactionHandler"] = err
			return
		}
		c.transactionHandler = financeHTTP.NewTransactionHandler(useCase, auditUseCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["transactionHandler"]; exists {
		return nil, storedErr
	}
	return c.transactionHandler, nil
}

// BudgetHandler returns the budget HTTP handler.
func (c *Container) BudgetHandler() (*financeHTTP.BudgetHandler, error) {
	c.budgetHandlerInit.Do(func() {
		useCase, auditUseCase, err := c.financeHandlerDeps()
		if err != nil {
			c.initErrors["budgetHandler"] = err
			return
		}
		c.budgetHandler = financeHTTP.NewBudgetHandler(useCase, auditUseCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["budgetHandler"]; exists {
		return nil, storedErr
	}
	return c.budgetHandler, nil
}

// GoalHandler returns the goal HTTP handler.
func (c *Container) GoalHandler() (*financeHTTP.GoalHandler, error) {
	c.goalHandlerInit.Do(func() {
		useCase, auditUseCase, err := c.financeHandlerDeps()
		if err != nil {
			c.initErrors["goalHandler"] = err
			return
		}
		c.goalHandler = financeHTTP.NewGoalHandler(useCase, auditUseCase, c.Logger())
	})
	if storedErr, exists := c.initErrors["goalHandler"]; exists {
		return nil, storedErr
	}
	return c.goalHandler, nil
}

// initFinanceUseCase creates the finance use case with all its dependencies.
func (c *Container) initFinanceUseCase() (financeUseCase.FinanceUseCase, error) {
	transactionRepo, err := c.TransactionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction repository for finance use case: %w", err)
	}

	budgetRepo, err := c.BudgetRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get budget repository for finance use case: %w", err)
	}

	goalRepo, err := c.GoalRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get goal repository for finance use case: %w", err)
	}

	useCase := financeUseCase.NewFinanceUseCase(transactionRepo, budgetRepo, goalRepo, c.Logger())

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for finance use case: %w", err)
	}

	return financeUseCase.NewFinanceUseCaseWithMetrics(useCase, businessMetrics), nil
}

// financeHandlerDeps resolves the shared dependencies of the finance HTTP
// handlers.
func (c *Container) financeHandlerDeps() (financeUseCase.FinanceUseCase, authUseCase.AuditUseCase, error) {
	useCase, err := c.FinanceUseCase()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get finance use case: %w", err)
	}

	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get audit use case: %w", err)
	}

	return useCase, auditUseCase, nil
}
