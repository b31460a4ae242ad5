package ledger

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/service"
	"github.com/centavoapp/centavo/internal/storage"
)

func newTestService(t *testing.T) (*Service, service.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return New(store), store
}

func registerTestUser(t *testing.T, svc *Service) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), "ana@example.com", "secret123", "Ana", "")
	require.NoError(t, err)
	return user
}

func walletBalance(t *testing.T, svc *Service, walletID int64) int64 {
	t.Helper()
	wallet, err := svc.GetWallet(context.Background(), walletID)
	require.NoError(t, err)
	return wallet.Balance.Cents
}

func TestRegisterSeedsDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user := registerTestUser(t, svc)

	wallets, err := svc.ListWallets(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, "Efectivo", wallets[0].Name)
	assert.Equal(t, model.WalletCash, wallets[0].Kind)
	assert.Equal(t, "ARS", wallets[0].Currency)
	assert.True(t, wallets[0].Balance.IsZero())

	categories, err := svc.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, categories, len(model.DefaultCategories))

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	assert.ElementsMatch(t, []string{"Sueldo", "Comida", "Transporte", "Servicios", "Ocio"}, names)

	t.Run("duplicate registration is a conflict", func(t *testing.T) {
		_, err := svc.Register(ctx, "ana@example.com", "other", "Ana", "")
		assert.ErrorIs(t, err, common.ErrConflict)
	})
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc)

	user, err := svc.Authenticate(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrPermissionDenied)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactionLifecycleMovesBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	wallet, err := svc.CreateWallet(ctx, &model.Wallet{
		UserID:   user.ID,
		Name:     "Banco",
		Currency: "ARS",
		Balance:  model.Money{Cents: 100000},
	})
	require.NoError(t, err)

	// 1000.00 - 150.00 = 850.00
	txn, err := svc.CreateTransaction(ctx, TransactionParams{
		UserID:      user.ID,
		WalletID:    wallet.ID,
		Type:        model.TypeExpense,
		Amount:      model.Money{Cents: 15000},
		Description: "supermercado",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(85000), walletBalance(t, svc, wallet.ID))

	// Update to a 50.00 expense: reverse then apply, 1000.00 - 50.00 = 950.00
	updated, err := svc.UpdateTransaction(ctx, txn.ID, TransactionParams{
		UserID:      user.ID,
		WalletID:    wallet.ID,
		Type:        model.TypeExpense,
		Amount:      model.Money{Cents: 5000},
		Description: "supermercado",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(95000), walletBalance(t, svc, wallet.ID))
	assert.Equal(t, txn.Date.Unix(), updated.Date.Unix(), "update keeps the original date")

	// Delete restores the original balance.
	require.NoError(t, svc.DeleteTransaction(ctx, txn.ID))
	assert.Equal(t, int64(100000), walletBalance(t, svc, wallet.ID))

	_, err = svc.GetTransaction(ctx, txn.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateTransactionValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)
	wallets, err := svc.ListWallets(ctx, user.ID)
	require.NoError(t, err)
	wallet := wallets[0]

	tests := []struct {
		name    string
		params  TransactionParams
		wantErr error
	}{
		{
			name: "unknown type",
			params: TransactionParams{
				UserID: user.ID, WalletID: wallet.ID,
				Type: "TRANSFER", Amount: model.Money{Cents: 100},
			},
			wantErr: common.ErrInvalidArgument,
		},
		{
			name: "zero amount",
			params: TransactionParams{
				UserID: user.ID, WalletID: wallet.ID,
				Type: model.TypeExpense, Amount: model.Money{},
			},
			wantErr: common.ErrInvalidArgument,
		},
		{
			name: "negative amount",
			params: TransactionParams{
				UserID: user.ID, WalletID: wallet.ID,
				Type: model.TypeExpense, Amount: model.Money{Cents: -100},
			},
			wantErr: common.ErrInvalidArgument,
		},
		{
			name: "missing wallet",
			params: TransactionParams{
				UserID: user.ID, WalletID: 9999,
				Type: model.TypeExpense, Amount: model.Money{Cents: 100},
			},
			wantErr: common.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("failed create leaves balance untouched", func(t *testing.T) {
		before := walletBalance(t, svc, wallet.ID)
		_, err := svc.CreateTransaction(ctx, TransactionParams{
			UserID: user.ID, WalletID: 9999,
			Type: model.TypeExpense, Amount: model.Money{Cents: 100},
		})
		require.Error(t, err)
		assert.Equal(t, before, walletBalance(t, svc, wallet.ID))
	})

	t.Run("empty description gets the default", func(t *testing.T) {
		txn, err := svc.CreateTransaction(ctx, TransactionParams{
			UserID: user.ID, WalletID: wallet.ID,
			Type: model.TypeIncome, Amount: model.Money{Cents: 100},
		})
		require.NoError(t, err)
		assert.Equal(t, DefaultDescription, txn.Description)
	})
}

func TestUpdateTransactionAcrossWallets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	w1, err := svc.CreateWallet(ctx, &model.Wallet{UserID: user.ID, Name: "Banco", Currency: "ARS", Balance: model.Money{Cents: 10000}})
	require.NoError(t, err)
	w2, err := svc.CreateWallet(ctx, &model.Wallet{UserID: user.ID, Name: "Tarjeta", Currency: "ARS", Balance: model.Money{Cents: 10000}})
	require.NoError(t, err)

	txn, err := svc.CreateTransaction(ctx, TransactionParams{
		UserID: user.ID, WalletID: w1.ID,
		Type: model.TypeExpense, Amount: model.Money{Cents: 3000},
		Description: "nafta",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7000), walletBalance(t, svc, w1.ID))

	// Move the expense to the other wallet: the old wallet is restored and
	// the new one debited, in one atomic step.
	_, err = svc.UpdateTransaction(ctx, txn.ID, TransactionParams{
		UserID: user.ID, WalletID: w2.ID,
		Type: model.TypeExpense, Amount: model.Money{Cents: 3000},
		Description: "nafta",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), walletBalance(t, svc, w1.ID))
	assert.Equal(t, int64(7000), walletBalance(t, svc, w2.ID))

	t.Run("failed update changes nothing", func(t *testing.T) {
		_, err := svc.UpdateTransaction(ctx, txn.ID, TransactionParams{
			UserID: user.ID, WalletID: 9999,
			Type: model.TypeExpense, Amount: model.Money{Cents: 3000},
		})
		require.ErrorIs(t, err, common.ErrNotFound)
		assert.Equal(t, int64(10000), walletBalance(t, svc, w1.ID))
		assert.Equal(t, int64(7000), walletBalance(t, svc, w2.ID))
	})
}

// TestBalanceConservation drives a random operation sequence and checks that
// the wallet balance always equals the starting balance plus the signed sum
// of the surviving journal entries.
func TestBalanceConservation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	const startCents = 1_000_000
	wallet, err := svc.CreateWallet(ctx, &model.Wallet{
		UserID: user.ID, Name: "Banco", Currency: "ARS",
		Balance: model.Money{Cents: startCents},
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	var live []int64

	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			txType := model.TypeExpense
			if rng.Intn(2) == 0 {
				txType = model.TypeIncome
			}
			txn, err := svc.CreateTransaction(ctx, TransactionParams{
				UserID: user.ID, WalletID: wallet.ID,
				Type: txType, Amount: model.Money{Cents: int64(rng.Intn(10000) + 1)},
			})
			require.NoError(t, err)
			live = append(live, txn.ID)
		case op == 1:
			id := live[rng.Intn(len(live))]
			txType := model.TypeExpense
			if rng.Intn(2) == 0 {
				txType = model.TypeIncome
			}
			_, err := svc.UpdateTransaction(ctx, id, TransactionParams{
				UserID: user.ID, WalletID: wallet.ID,
				Type: txType, Amount: model.Money{Cents: int64(rng.Intn(10000) + 1)},
			})
			require.NoError(t, err)
		default:
			idx := rng.Intn(len(live))
			require.NoError(t, svc.DeleteTransaction(ctx, live[idx]))
			live = append(live[:idx], live[idx+1:]...)
		}
	}

	var signedSum int64
	txns, err := store.ListTransactionsByPeriod(ctx, user.ID,
		time.Now().AddDate(-1, 0, 0), time.Now().AddDate(1, 0, 0))
	require.NoError(t, err)
	require.Len(t, txns, len(live))
	for _, txn := range txns {
		signedSum += txn.SignedAmount().Cents
	}

	assert.Equal(t, startCents+signedSum, walletBalance(t, svc, wallet.ID))
}

func TestDeleteWalletRemovesJournal(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	wallet, err := svc.CreateWallet(ctx, &model.Wallet{UserID: user.ID, Name: "Banco", Currency: "ARS"})
	require.NoError(t, err)

	txn, err := svc.CreateTransaction(ctx, TransactionParams{
		UserID: user.ID, WalletID: wallet.ID,
		Type: model.TypeIncome, Amount: model.Money{Cents: 100},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWallet(ctx, wallet.ID))

	_, err = svc.GetWallet(ctx, wallet.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.GetTransaction(ctx, txn.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteCategoryGuard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	cat, err := svc.CreateCategory(ctx, &model.Category{UserID: user.ID, Name: "Mascotas", Type: model.CategoryExpense})
	require.NoError(t, err)

	wallets, err := svc.ListWallets(ctx, user.ID)
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, TransactionParams{
		UserID: user.ID, WalletID: wallets[0].ID, CategoryID: cat.ID,
		Type: model.TypeExpense, Amount: model.Money{Cents: 100},
		Description: "veterinaria",
	})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, user.ID, cat.ID)
	assert.ErrorIs(t, err, common.ErrConflict)

	t.Run("unreferenced category deletes fine", func(t *testing.T) {
		empty, err := svc.CreateCategory(ctx, &model.Category{UserID: user.ID, Name: "Viajes", Type: model.CategoryExpense})
		require.NoError(t, err)
		require.NoError(t, svc.DeleteCategory(ctx, user.ID, empty.ID))
	})

	t.Run("foreign category reads as not found", func(t *testing.T) {
		other, err := svc.Register(ctx, "beto@example.com", "secret123", "Beto", "")
		require.NoError(t, err)
		err = svc.DeleteCategory(ctx, other.ID, cat.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestGetDashboard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc)

	wallets, err := svc.ListWallets(ctx, user.ID)
	require.NoError(t, err)
	wallet := wallets[0]

	categories, err := svc.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	var food model.Category
	for _, c := range categories {
		if c.Name == "Comida" {
			food = c
		}
	}
	require.NotZero(t, food.ID)

	march := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err = svc.CreateTransaction(ctx, TransactionParams{
		UserID: user.ID, WalletID: wallet.ID,
		Type: model.TypeIncome, Amount: model.Money{Cents: 100000},
		Description: "sueldo", Date: march,
	})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, TransactionParams{
		UserID: user.ID, WalletID: wallet.ID, CategoryID: food.ID,
		Type: model.TypeExpense, Amount: model.Money{Cents: 20000},
		Description: "supermercado", Date: march,
	})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(ctx, TransactionParams{
		UserID: user.ID, WalletID: wallet.ID,
		Type: model.TypeExpense, Amount: model.Money{Cents: 5000},
		Description: "varios", Date: march,
	})
	require.NoError(t, err)
	// Out of period: affects the all-time balance only.
	_, err = svc.CreateTransaction(ctx, TransactionParams{
		UserID: user.ID, WalletID: wallet.ID,
		Type: model.TypeExpense, Amount: model.Money{Cents: 1000},
		Description: "abril", Date: march.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	d, err := svc.GetDashboard(ctx, user.ID, 2026, time.March)
	require.NoError(t, err)

	assert.Equal(t, int64(74000), d.Balance.Cents, "balance is all-time")
	assert.Equal(t, int64(100000), d.Income.Cents)
	assert.Equal(t, int64(25000), d.Expense.Cents)
	assert.Len(t, d.Transactions, 3)

	chart := make(map[string]int64)
	for _, slice := range d.ChartData {
		chart[slice.Name] = slice.Amount.Cents
	}
	assert.Equal(t, int64(20000), chart["Comida"])
	assert.Equal(t, int64(5000), chart["Otros"], "uncategorized spend lands in Otros")
}
