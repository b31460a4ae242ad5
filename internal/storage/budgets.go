package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

// CreateBudget inserts a per-category spending limit.
func (s *queries) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := validateID(budget.UserID, "userID"); err != nil {
		return err
	}
	if err := validateID(budget.CategoryID, "categoryID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category_id, limit_cents)
		VALUES (?, ?, ?)`,
		budget.UserID, budget.CategoryID, budget.Limit.Cents)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}

	budget.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get budget id: %w", err)
	}
	return nil
}

// GetBudget returns the budget with the given id.
func (s *queries) GetBudget(ctx context.Context, id int64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "budgetID"); err != nil {
		return nil, err
	}

	var b model.Budget
	err := s.q.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, limit_cents, created_at
		FROM budgets WHERE id = ?`, id).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Limit.Cents, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("budget %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return &b, nil
}

// ListBudgets returns all budgets owned by the user.
func (s *queries) ListBudgets(ctx context.Context, userID int64) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, category_id, limit_cents, created_at
		FROM budgets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Limit.Cents, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudget rewrites a budget's limit and category.
func (s *queries) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := validateID(budget.ID, "budgetID"); err != nil {
		return err
	}
	if err := validateID(budget.CategoryID, "categoryID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE budgets SET category_id = ?, limit_cents = ? WHERE id = ?`,
		budget.CategoryID, budget.Limit.Cents, budget.ID)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("budget %d", budget.ID)
	}
	return nil
}

// DeleteBudget removes a budget.
func (s *queries) DeleteBudget(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "budgetID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("budget %d", id)
	}
	return nil
}
