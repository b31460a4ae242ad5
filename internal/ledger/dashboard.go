package ledger

import (
	"context"
	"time"

	"github.com/centavoapp/centavo/internal/model"
)

// CategoryAmount is one slice of the expense breakdown chart.
type CategoryAmount struct {
	Name   string
	Amount model.Money
}

// Dashboard is the per-user aggregate view for one calendar month. The total
// balance is always all-time; everything else is scoped to the period.
type Dashboard struct {
	Transactions []model.Transaction
	Wallets      []model.Wallet
	Categories   []model.Category
	Budgets      []model.BudgetProgress
	ChartData    []CategoryAmount
	Balance      model.Money
	Income       model.Money
	Expense      model.Money
}

// MonthPeriod returns the inclusive bounds of a calendar month.
func MonthPeriod(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// GetDashboard assembles the aggregate view for one month.
func (s *Service) GetDashboard(ctx context.Context, userID int64, year int, month time.Month) (*Dashboard, error) {
	start, end := MonthPeriod(year, month)

	wallets, err := s.store.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.store.ListTransactionsByPeriod(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Transactions: transactions,
		Wallets:      wallets,
		Categories:   categories,
	}
	for _, w := range wallets {
		d.Balance = d.Balance.Add(w.Balance)
	}

	catNames := make(map[int64]model.Category, len(categories))
	for _, c := range categories {
		catNames[c.ID] = c
	}

	expenseByCategory := make(map[string]model.Money)
	spentByCategory := make(map[int64]model.Money)
	var chartOrder []string
	for _, t := range transactions {
		if t.Type == model.TypeIncome {
			d.Income = d.Income.Add(t.Amount)
			continue
		}
		d.Expense = d.Expense.Add(t.Amount)
		spentByCategory[t.CategoryID] = spentByCategory[t.CategoryID].Add(t.Amount)

		name := t.CategoryName
		if name == "" {
			name = "Otros"
		}
		if _, seen := expenseByCategory[name]; !seen {
			chartOrder = append(chartOrder, name)
		}
		expenseByCategory[name] = expenseByCategory[name].Add(t.Amount)
	}
	for _, name := range chartOrder {
		d.ChartData = append(d.ChartData, CategoryAmount{Name: name, Amount: expenseByCategory[name]})
	}

	for _, b := range budgets {
		progress := model.BudgetProgress{
			Budget: b,
			Spent:  spentByCategory[b.CategoryID],
		}
		if cat, ok := catNames[b.CategoryID]; ok {
			progress.CategoryName = cat.Name
			progress.CategoryIcon = cat.Icon
		}
		d.Budgets = append(d.Budgets, progress)
	}

	return d, nil
}
