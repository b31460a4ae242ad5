package ledger

import (
	"context"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

// CreateCategory creates a category for the user.
func (s *Service) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if category.Type == "" {
		category.Type = model.CategoryExpense
	}
	if !category.Type.Valid() {
		return nil, common.InvalidArgumentf("category type %q", category.Type)
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns the user's categories.
func (s *Service) ListCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

// DeleteCategory removes one of the user's categories. A category that is
// still referenced by journal entries may not be deleted; that surfaces as a
// conflict, not a cascade. Someone else's category reads as not found.
func (s *Service) DeleteCategory(ctx context.Context, userID, id int64) error {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if category.UserID != userID {
		return common.NotFoundf("category %d", id)
	}

	count, err := s.store.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.Conflictf("category %d is referenced by %d transactions", id, count)
	}

	return s.store.DeleteCategoryRow(ctx, id)
}
