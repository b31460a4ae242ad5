package model

import "time"

// Budget is a per-category monthly spending limit. Only the limit is stored;
// the actual spend is recomputed from the journal on every read.
type Budget struct {
	CreatedAt  time.Time
	ID         int64
	UserID     int64
	CategoryID int64
	Limit      Money
}

// BudgetProgress pairs a budget with its derived spend for a period.
type BudgetProgress struct {
	CategoryName string
	CategoryIcon string
	Budget       Budget
	Spent        Money
}
