package advisor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/ledger"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/storage"
)

// stubClient returns canned replies or a fixed error.
type stubClient struct {
	reply string
	err   error
	calls int
}

func (c *stubClient) GenerateContent(_ context.Context, _ string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func testCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Sueldo", Type: model.CategoryIncome},
		{ID: 2, Name: "Comida", Type: model.CategoryExpense},
		{ID: 3, Name: "Transporte", Type: model.CategoryExpense},
		{ID: 4, Name: "Servicios", Type: model.CategoryExpense},
		{ID: 5, Name: "Salud", Type: model.CategoryExpense},
		{ID: 6, Name: "Suscripciones", Type: model.CategoryExpense},
	}
}

func TestFallbackCategory(t *testing.T) {
	categories := testCategories()

	tests := []struct {
		description string
		want        int64
	}{
		// Exact category-name substring wins first.
		{"pago sueldo marzo", 1},
		{"COMIDA con amigos", 2},
		// Merchant keyword rules.
		{"FARMACITY SA sucursal 12", 5},
		{"COTO suc 33 compra", 2},
		{"UBER *TRIP", 3},
		{"YPF ruta 2", 3},
		{"EDESUR factura 03/26", 4},
		{"NETFLIX.COM", 6},
		{"SPOTIFY P344", 6},
		{"MOVISTAR abono", 4},
		// No rule matches.
		{"transferencia recibida", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackCategory(tt.description, categories))
		})
	}

	t.Run("rule without matching category yields zero", func(t *testing.T) {
		// Clothing rule triggers but the user has no clothing category.
		assert.Zero(t, FallbackCategory("ZARA palermo", categories))
	})
}

func newTestService(t *testing.T, client Client) (*Service, int64) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })

	user, err := ledger.New(store).Register(ctx, "ana@example.com", "secret123", "Ana", "")
	require.NoError(t, err)

	return NewService(store, client), user.ID
}

func TestCategorizeDescriptionsWithOracle(t *testing.T) {
	// Default categories are seeded with sequential ids starting at 1:
	// Sueldo, Comida, Transporte, Servicios, Ocio.
	svc, userID := newTestService(t, &stubClient{reply: "[2, 3]"})

	ids, err := svc.CategorizeDescriptions(context.Background(), userID, []string{"COTO", "UBER"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids)
}

func TestCategorizeDescriptionsFencedReply(t *testing.T) {
	svc, userID := newTestService(t, &stubClient{reply: "```json\n[2]\n```"})

	ids, err := svc.CategorizeDescriptions(context.Background(), userID, []string{"COTO"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestCategorizeDescriptionsOracleFailureFallsBack(t *testing.T) {
	client := &stubClient{err: common.Unavailablef("oracle down")}
	svc, userID := newTestService(t, client)

	ids, err := svc.CategorizeDescriptions(context.Background(), userID, []string{"COTO suc 1", "algo raro"})
	require.NoError(t, err, "oracle failure must not fail the batch")
	require.Len(t, ids, 2)
	assert.NotZero(t, ids[0], "keyword fallback classifies the supermarket")
	assert.Zero(t, ids[1])
	assert.Equal(t, 1, client.calls)
}

func TestCategorizeDescriptionsBadOracleReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "dale, ahí van las categorías"},
		{"wrong length", "[1, 2, 3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userID := newTestService(t, &stubClient{reply: tt.reply})

			ids, err := svc.CategorizeDescriptions(context.Background(), userID, []string{"COTO"})
			require.NoError(t, err)
			require.Len(t, ids, 1)
			assert.NotZero(t, ids[0], "fallback still classifies")
		})
	}
}

func TestCategorizeDescriptionsUnknownIDDropped(t *testing.T) {
	svc, userID := newTestService(t, &stubClient{reply: "[999]"})

	ids, err := svc.CategorizeDescriptions(context.Background(), userID, []string{"algo"})
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, ids, "ids outside the user's categories are discarded")
}

func TestCategorizeDescriptionsNoClient(t *testing.T) {
	svc, userID := newTestService(t, nil)

	ids, err := svc.CategorizeDescriptions(context.Background(), userID, []string{"FARMACITY", "misterio"})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Zero(t, ids[1])
}

func TestMonthlyAdvice(t *testing.T) {
	t.Run("no client is unavailable", func(t *testing.T) {
		svc, userID := newTestService(t, nil)
		_, err := svc.MonthlyAdvice(context.Background(), userID, 2026, 3)
		assert.ErrorIs(t, err, common.ErrUnavailable)
	})

	t.Run("empty month gets the canned reply without calling the oracle", func(t *testing.T) {
		client := &stubClient{reply: "should not be used"}
		svc, userID := newTestService(t, client)

		advice, err := svc.MonthlyAdvice(context.Background(), userID, 2026, 3)
		require.NoError(t, err)
		assert.Contains(t, advice, "No hay movimientos")
		assert.Zero(t, client.calls)
	})

	t.Run("oracle failure surfaces", func(t *testing.T) {
		client := &stubClient{err: common.Unavailablef("oracle down")}
		svc, userID := newTestService(t, client)
		seedMonthSpend(t, svc, userID)

		_, err := svc.MonthlyAdvice(context.Background(), userID, 2026, 3)
		assert.ErrorIs(t, err, common.ErrUnavailable)
	})

	t.Run("advice is returned trimmed", func(t *testing.T) {
		client := &stubClient{reply: "  Gastaste mucho en comida.  \n"}
		svc, userID := newTestService(t, client)
		seedMonthSpend(t, svc, userID)

		advice, err := svc.MonthlyAdvice(context.Background(), userID, 2026, 3)
		require.NoError(t, err)
		assert.Equal(t, "Gastaste mucho en comida.", advice)
	})
}

func seedMonthSpend(t *testing.T, svc *Service, userID int64) {
	t.Helper()
	ctx := context.Background()

	ledgerSvc := ledger.New(svc.store)
	wallets, err := ledgerSvc.ListWallets(ctx, userID)
	require.NoError(t, err)

	_, err = ledgerSvc.CreateTransaction(ctx, ledger.TransactionParams{
		UserID:      userID,
		WalletID:    wallets[0].ID,
		Type:        model.TypeExpense,
		Amount:      model.Money{Cents: 5000},
		Description: "supermercado",
		Date:        timeDate(2026, 3, 10),
	})
	require.NoError(t, err)
}

func timeDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
