// Package budget implements the read-side budget tracker: stored limits
// compared against spend recomputed from the journal on every call.
package budget

import (
	"context"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/service"
)

// Tracker computes budget progress. It never mutates the journal.
type Tracker struct {
	store service.Storage
	now   func() time.Time
}

// New creates a budget tracker backed by the given storage.
func New(store service.Storage) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Progress is the derived state of one budget for a period.
type Progress struct {
	CategoryName string
	CategoryIcon string
	Limit        model.Money
	Spent        model.Money
	BudgetID     int64
	CategoryID   int64
}

// currentMonth returns the inclusive bounds of the calendar month at call
// time, the default period when the caller supplies none.
func (t *Tracker) currentMonth() (time.Time, time.Time) {
	now := t.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// ComputeProgress returns the limit and period spend for the user's budget on
// one category. Zero periodStart/periodEnd select the current calendar month.
func (t *Tracker) ComputeProgress(ctx context.Context, userID, categoryID int64, periodStart, periodEnd time.Time) (*Progress, error) {
	if periodStart.IsZero() || periodEnd.IsZero() {
		periodStart, periodEnd = t.currentMonth()
	}

	budgets, err := t.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, b := range budgets {
		if b.CategoryID != categoryID {
			continue
		}
		return t.progressFor(ctx, b, periodStart, periodEnd)
	}
	return nil, common.NotFoundf("budget for category %d", categoryID)
}

// ListProgress returns every budget of the user with its period spend.
func (t *Tracker) ListProgress(ctx context.Context, userID int64, periodStart, periodEnd time.Time) ([]Progress, error) {
	if periodStart.IsZero() || periodEnd.IsZero() {
		periodStart, periodEnd = t.currentMonth()
	}

	budgets, err := t.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := make([]Progress, 0, len(budgets))
	for _, b := range budgets {
		p, err := t.progressFor(ctx, b, periodStart, periodEnd)
		if err != nil {
			return nil, err
		}
		progress = append(progress, *p)
	}
	return progress, nil
}

func (t *Tracker) progressFor(ctx context.Context, b model.Budget, start, end time.Time) (*Progress, error) {
	spent, err := t.store.SumExpenses(ctx, b.UserID, b.CategoryID, start, end)
	if err != nil {
		return nil, err
	}

	p := &Progress{
		BudgetID:   b.ID,
		CategoryID: b.CategoryID,
		Limit:      b.Limit,
		Spent:      spent,
	}
	if cat, err := t.store.GetCategory(ctx, b.CategoryID); err == nil {
		p.CategoryName = cat.Name
		p.CategoryIcon = cat.Icon
	}
	return p, nil
}

// CreateBudget stores a new per-category limit. The category must exist and
// belong to the user.
func (t *Tracker) CreateBudget(ctx context.Context, b *model.Budget) (*model.Budget, error) {
	if !b.Limit.IsPositive() {
		return nil, common.InvalidArgumentf("budget limit must be positive")
	}
	cat, err := t.store.GetCategory(ctx, b.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat.UserID != b.UserID {
		return nil, common.PermissionDeniedf("category %d does not belong to user %d", b.CategoryID, b.UserID)
	}
	if err := t.store.CreateBudget(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBudget rewrites a budget's limit and category.
func (t *Tracker) UpdateBudget(ctx context.Context, b *model.Budget) error {
	if !b.Limit.IsPositive() {
		return common.InvalidArgumentf("budget limit must be positive")
	}
	return t.store.UpdateBudget(ctx, b)
}

// DeleteBudget removes a budget.
func (t *Tracker) DeleteBudget(ctx context.Context, id int64) error {
	return t.store.DeleteBudget(ctx, id)
}
