package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

// CreateCategory inserts a new category.
func (s *queries) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(category.Name, "category name"); err != nil {
		return err
	}
	if err := validateID(category.UserID, "userID"); err != nil {
		return err
	}
	if !category.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, category.Type)
	}

	icon := category.Icon
	if icon == "" {
		icon = "🏷️"
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, icon, type)
		VALUES (?, ?, ?, ?)`,
		category.UserID, category.Name, icon, category.Type)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	category.Icon = icon
	category.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category id: %w", err)
	}
	return nil
}

// GetCategory returns the category with the given id.
func (s *queries) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "categoryID"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.q.QueryRowContext(ctx, `
		SELECT id, user_id, name, icon, type, created_at
		FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Icon, &cat.Type, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("category %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// ListCategories returns the user's categories ordered by name.
func (s *queries) ListCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, name, icon, type, created_at
		FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Icon, &cat.Type, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// DeleteCategoryRow removes the category row. The referential guard lives in
// the ledger service; this is the bare delete.
func (s *queries) DeleteCategoryRow(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "categoryID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("category %d", id)
	}
	return nil
}

// CountTransactionsByCategory returns how many journal entries reference the
// category.
func (s *queries) CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return 0, err
	}

	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
