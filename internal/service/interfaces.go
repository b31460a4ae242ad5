// Package service defines the interfaces between the domain services and
// their collaborators.
package service

import (
	"context"
	"time"

	"github.com/centavoapp/centavo/internal/model"
)

// TransactionFilter defines filtering and paging options for journal queries.
type TransactionFilter struct {
	Search   string
	Type     string // "INCOME", "EXPENSE" or "ALL"
	Page     int
	PageSize int
}

// TransactionPage is one page of journal results plus paging metadata.
type TransactionPage struct {
	Transactions []model.Transaction
	Total        int
	TotalPages   int
	Page         int
}

// Storage defines the contract for the persistence layer. Multi-step
// mutations must run against a Tx obtained from BeginTx so that either every
// step persists or none does.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Wallet operations
	CreateWallet(ctx context.Context, wallet *model.Wallet) error
	GetWallet(ctx context.Context, id int64) (*model.Wallet, error)
	ListWallets(ctx context.Context, userID int64) ([]model.Wallet, error)
	UpdateWallet(ctx context.Context, wallet *model.Wallet) error
	DeleteWalletRow(ctx context.Context, id int64) error
	DeleteTransactionsByWallet(ctx context.Context, walletID int64) error
	ApplyWalletDelta(ctx context.Context, walletID int64, delta model.Money) (model.Money, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]model.Category, error)
	DeleteCategoryRow(ctx context.Context, id int64) error
	CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error)

	// Journal operations
	InsertTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	UpdateTransactionRow(ctx context.Context, txn *model.Transaction) error
	DeleteTransactionRow(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) (*TransactionPage, error)
	ListTransactionsByPeriod(ctx context.Context, userID int64, start, end time.Time) ([]model.Transaction, error)
	SumExpenses(ctx context.Context, userID, categoryID int64, start, end time.Time) (model.Money, error)

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, id int64) (*model.Budget, error)
	ListBudgets(ctx context.Context, userID int64) ([]model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, id int64) error

	// Group operations
	CreateGroupRow(ctx context.Context, group *model.Group) error
	GetGroup(ctx context.Context, id int64) (*model.Group, error)
	ListGroups(ctx context.Context, ownerID int64) ([]model.Group, error)
	InsertGroupMember(ctx context.Context, member *model.GroupMember) error
	ListGroupMembers(ctx context.Context, groupID int64) ([]model.GroupMember, error)
	InsertGroupExpense(ctx context.Context, expense *model.GroupExpense) error
	GetGroupExpense(ctx context.Context, id int64) (*model.GroupExpense, error)
	UpdateGroupExpenseRow(ctx context.Context, expense *model.GroupExpense) error
	ListGroupExpenses(ctx context.Context, groupID int64, start, end *time.Time) ([]model.GroupExpense, error)
	InsertExpenseSplits(ctx context.Context, expenseID int64, splits []model.ExpenseSplit) error
	DeleteSplitsForExpense(ctx context.Context, expenseID int64) error
	DeleteSplitsByGroup(ctx context.Context, groupID int64) error
	DeleteExpensesByGroup(ctx context.Context, groupID int64) error
	DeleteMembersByGroup(ctx context.Context, groupID int64) error
	DeleteGroupRow(ctx context.Context, id int64) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a storage unit of work. Every Storage operation invoked through it
// joins the same database transaction.
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}
