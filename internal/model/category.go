package model

import "time"

// CategoryType indicates whether a category labels income or expenses.
type CategoryType string

const (
	// CategoryIncome labels income transactions.
	CategoryIncome CategoryType = "INCOME"
	// CategoryExpense labels expense transactions.
	CategoryExpense CategoryType = "EXPENSE"
)

// Valid reports whether the type is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category is a user-owned transaction label. Categories are referenced by
// transactions and budgets; a category cannot be deleted while any
// transaction still points at it.
type Category struct {
	CreatedAt time.Time
	Name      string
	Icon      string
	Type      CategoryType
	ID        int64
	UserID    int64
}

// DefaultCategories is the starter set created for every new user.
var DefaultCategories = []Category{
	{Name: "Sueldo", Type: CategoryIncome, Icon: "DollarSign"},
	{Name: "Comida", Type: CategoryExpense, Icon: "Pizza"},
	{Name: "Transporte", Type: CategoryExpense, Icon: "Car"},
	{Name: "Servicios", Type: CategoryExpense, Icon: "Zap"},
	{Name: "Ocio", Type: CategoryExpense, Icon: "Smile"},
}
