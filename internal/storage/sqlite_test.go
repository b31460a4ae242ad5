package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/service"
)

// createTestStorage opens a fresh migrated database in a temp dir.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "failed to create storage")

	require.NoError(t, store.Migrate(context.Background()), "failed to migrate")
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// createTestUser inserts a user and returns it.
func createTestUser(t *testing.T, store *SQLiteStorage, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash",
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

// createTestWallet inserts a wallet for the user and returns it.
func createTestWallet(t *testing.T, store *SQLiteStorage, userID int64, name string, balance int64) *model.Wallet {
	t.Helper()
	wallet := &model.Wallet{
		UserID:   userID,
		Name:     name,
		Currency: "ARS",
		Kind:     model.WalletDebit,
		Balance:  model.Money{Cents: balance},
	}
	require.NoError(t, store.CreateWallet(context.Background(), wallet))
	return wallet
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again must be a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestCreateUser(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	user := createTestUser(t, store, "ana@example.com")
	assert.Positive(t, user.ID)

	got, err := store.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Test User", got.Name)

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		err := store.CreateUser(ctx, &model.User{
			Email:        "ana@example.com",
			Name:         "Other",
			PasswordHash: "hash",
		})
		assert.ErrorIs(t, err, common.ErrConflict)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, 9999)
		assert.ErrorIs(t, err, common.ErrNotFound)

		_, err = store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestApplyWalletDelta(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "ana@example.com")
	wallet := createTestWallet(t, store, user.ID, "Banco", 10000)

	balance, err := store.ApplyWalletDelta(ctx, wallet.ID, model.Money{Cents: -2500})
	require.NoError(t, err)
	assert.Equal(t, int64(7500), balance.Cents)

	balance, err = store.ApplyWalletDelta(ctx, wallet.ID, model.Money{Cents: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(8000), balance.Cents)

	got, err := store.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), got.Balance.Cents)

	t.Run("missing wallet is not found", func(t *testing.T) {
		_, err := store.ApplyWalletDelta(ctx, 9999, model.Money{Cents: 100})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestWalletCRUD(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "ana@example.com")

	w1 := createTestWallet(t, store, user.ID, "Banco", 0)
	w2 := createTestWallet(t, store, user.ID, "Efectivo", 5000)

	wallets, err := store.ListWallets(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)

	w1.Name = "Banco Nación"
	w1.Bank = "BNA"
	w1.Balance = model.Money{Cents: 123}
	require.NoError(t, store.UpdateWallet(ctx, w1))

	got, err := store.GetWallet(ctx, w1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Banco Nación", got.Name)
	assert.Equal(t, "BNA", got.Bank)
	assert.Equal(t, int64(123), got.Balance.Cents)

	require.NoError(t, store.DeleteWalletRow(ctx, w2.ID))
	_, err = store.GetWallet(ctx, w2.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func insertTestTransaction(t *testing.T, store *SQLiteStorage, userID, walletID, categoryID int64, txType model.TransactionType, cents int64, description string, date time.Time) *model.Transaction {
	t.Helper()
	txn := &model.Transaction{
		UserID:      userID,
		WalletID:    walletID,
		CategoryID:  categoryID,
		Type:        txType,
		Amount:      model.Money{Cents: cents},
		Description: description,
		Date:        date,
	}
	require.NoError(t, store.InsertTransaction(context.Background(), txn))
	return txn
}

func TestListTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "ana@example.com")
	wallet := createTestWallet(t, store, user.ID, "Banco", 0)

	food := &model.Category{UserID: user.ID, Name: "Comida", Type: model.CategoryExpense}
	require.NoError(t, store.CreateCategory(ctx, food))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		txType := model.TypeExpense
		description := "supermercado coto"
		categoryID := food.ID
		if i%5 == 0 {
			txType = model.TypeIncome
			description = "sueldo"
			categoryID = 0
		}
		insertTestTransaction(t, store, user.ID, wallet.ID, categoryID, txType, int64((i+1)*100), description, base.Add(time.Duration(i)*time.Hour))
	}

	t.Run("default page size is 10", func(t *testing.T) {
		page, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{})
		require.NoError(t, err)
		assert.Len(t, page.Transactions, 10)
		assert.Equal(t, 25, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("newest first", func(t *testing.T) {
		page, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{})
		require.NoError(t, err)
		for i := 1; i < len(page.Transactions); i++ {
			assert.False(t, page.Transactions[i-1].Date.Before(page.Transactions[i].Date))
		}
	})

	t.Run("last page is partial", func(t *testing.T) {
		page, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{Page: 3})
		require.NoError(t, err)
		assert.Len(t, page.Transactions, 5)
		assert.Equal(t, 3, page.Page)
	})

	t.Run("beyond the end is empty, not an error", func(t *testing.T) {
		page, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{Page: 10})
		require.NoError(t, err)
		assert.Empty(t, page.Transactions)
		assert.Equal(t, 25, page.Total)
	})

	t.Run("search matches description", func(t *testing.T) {
		page, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{Search: "SUELDO"})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
	})

	t.Run("search matches category name", func(t *testing.T) {
		page, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{Search: "comida"})
		require.NoError(t, err)
		assert.Equal(t, 20, page.Total)
	})

	t.Run("type filter", func(t *testing.T) {
		page, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{Type: "INCOME"})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
		for _, txn := range page.Transactions {
			assert.Equal(t, model.TypeIncome, txn.Type)
		}
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{Type: "TRANSFER"})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})

	t.Run("category name joined on reads", func(t *testing.T) {
		page, err := store.ListTransactions(ctx, user.ID, service.TransactionFilter{Type: "EXPENSE", PageSize: 1})
		require.NoError(t, err)
		require.Len(t, page.Transactions, 1)
		assert.Equal(t, "Comida", page.Transactions[0].CategoryName)
	})
}

func TestSumExpenses(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "ana@example.com")
	wallet := createTestWallet(t, store, user.ID, "Banco", 0)

	food := &model.Category{UserID: user.ID, Name: "Comida", Type: model.CategoryExpense}
	require.NoError(t, store.CreateCategory(ctx, food))

	march := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	insertTestTransaction(t, store, user.ID, wallet.ID, food.ID, model.TypeExpense, 1500, "almuerzo", march)
	insertTestTransaction(t, store, user.ID, wallet.ID, food.ID, model.TypeExpense, 2500, "cena", march.AddDate(0, 0, 5))
	insertTestTransaction(t, store, user.ID, wallet.ID, food.ID, model.TypeExpense, 9999, "fuera de periodo", april)
	// Income in the same category must not count as spend.
	insertTestTransaction(t, store, user.ID, wallet.ID, food.ID, model.TypeIncome, 700, "reintegro", march)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	sum, err := store.SumExpenses(ctx, user.ID, food.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), sum.Cents)

	t.Run("empty period sums to zero", func(t *testing.T) {
		sum, err := store.SumExpenses(ctx, user.ID, food.ID, start.AddDate(-1, 0, 0), end.AddDate(-1, 0, 0))
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})
}

func TestCountTransactionsByCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "ana@example.com")
	wallet := createTestWallet(t, store, user.ID, "Banco", 0)

	cat := &model.Category{UserID: user.ID, Name: "Ocio", Type: model.CategoryExpense}
	require.NoError(t, store.CreateCategory(ctx, cat))

	count, err := store.CountTransactionsByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	insertTestTransaction(t, store, user.ID, wallet.ID, cat.ID, model.TypeExpense, 100, "cine", time.Now())
	insertTestTransaction(t, store, user.ID, wallet.ID, 0, model.TypeExpense, 100, "sin categoria", time.Now())

	count, err = store.CountTransactionsByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTxRollback(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "ana@example.com")
	wallet := createTestWallet(t, store, user.ID, "Banco", 10000)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.ApplyWalletDelta(ctx, wallet.ID, model.Money{Cents: -10000})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	got, err := store.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.Balance.Cents, "rollback must leave the balance untouched")
}

func TestGroupCascadePrimitives(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "ana@example.com")

	group := &model.Group{OwnerID: user.ID, Name: "Viaje"}
	require.NoError(t, store.CreateGroupRow(ctx, group))

	m1 := &model.GroupMember{GroupID: group.ID, Name: "Ana", UserID: user.ID}
	m2 := &model.GroupMember{GroupID: group.ID, Name: "Beto"}
	require.NoError(t, store.InsertGroupMember(ctx, m1))
	require.NoError(t, store.InsertGroupMember(ctx, m2))

	expense := &model.GroupExpense{
		GroupID:     group.ID,
		Description: "Nafta",
		Amount:      model.Money{Cents: 1000},
		PaidByID:    m1.ID,
		Date:        time.Now().UTC(),
		Splits: []model.ExpenseSplit{
			{MemberID: m1.ID, Amount: model.Money{Cents: 500}},
			{MemberID: m2.ID, Amount: model.Money{Cents: 500}},
		},
	}
	require.NoError(t, store.InsertGroupExpense(ctx, expense))

	got, err := store.GetGroupExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Len(t, got.Splits, 2)

	t.Run("ghost member has no user id", func(t *testing.T) {
		members, err := store.ListGroupMembers(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, user.ID, members[0].UserID)
		assert.Zero(t, members[1].UserID)
	})

	t.Run("cascade delete order", func(t *testing.T) {
		require.NoError(t, store.DeleteSplitsByGroup(ctx, group.ID))
		require.NoError(t, store.DeleteExpensesByGroup(ctx, group.ID))
		require.NoError(t, store.DeleteMembersByGroup(ctx, group.ID))
		require.NoError(t, store.DeleteGroupRow(ctx, group.ID))

		_, err := store.GetGroup(ctx, group.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
		_, err = store.GetGroupExpense(ctx, expense.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}
