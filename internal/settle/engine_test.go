package settle

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
	"github.com/centavoapp/centavo/internal/service"
	"github.com/centavoapp/centavo/internal/storage"
)

type testGroup struct {
	engine *Engine
	owner  *model.User
	group  *model.Group
	ana    int64 // owner's member id
	beto   int64
	carla  int64
}

func newTestEngine(t *testing.T) (*Engine, service.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return New(store), store
}

// setupGroup creates an owner, a group and two ghost members.
func setupGroup(t *testing.T) *testGroup {
	t.Helper()
	ctx := context.Background()
	engine, store := newTestEngine(t)

	owner, err := ledger.New(store).Register(ctx, "ana@example.com", "secret123", "Ana", "")
	require.NoError(t, err)

	group, err := engine.CreateGroup(ctx, owner.ID, "Viaje a Córdoba", "🏔️")
	require.NoError(t, err)
	require.Len(t, group.Members, 1, "owner joins as the first member")

	beto, err := engine.AddMember(ctx, group.ID, "Beto", "")
	require.NoError(t, err)
	carla, err := engine.AddMember(ctx, group.ID, "Carla", "")
	require.NoError(t, err)

	return &testGroup{
		engine: engine,
		owner:  owner,
		group:  group,
		ana:    group.Members[0].ID,
		beto:   beto.ID,
		carla:  carla.ID,
	}
}

func splitMap(e *model.GroupExpense) map[int64]int64 {
	m := make(map[int64]int64, len(e.Splits))
	for _, s := range e.Splits {
		m[s.MemberID] = s.Amount.Cents
	}
	return m
}

func TestCreateExpenseEqualSplit(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()

	// 100.00 among 3: remainder cent goes to the first participant.
	expense, err := tg.engine.CreateExpense(ctx, ExpenseParams{
		GroupID:     tg.group.ID,
		Description: "Cena",
		Mode:        model.SplitEqual,
		PaidByID:    tg.ana,
		Amount:      model.Money{Cents: 10000},
	})
	require.NoError(t, err)
	require.Len(t, expense.Splits, 3)

	var sum int64
	for _, s := range expense.Splits {
		sum += s.Amount.Cents
	}
	assert.Equal(t, int64(10000), sum, "splits conserve the total")

	splits := splitMap(expense)
	assert.Equal(t, int64(3334), splits[tg.ana])
	assert.Equal(t, int64(3333), splits[tg.beto])
	assert.Equal(t, int64(3333), splits[tg.carla])
}

func TestCreateExpenseEqualSubset(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()

	expense, err := tg.engine.CreateExpense(ctx, ExpenseParams{
		GroupID:        tg.group.ID,
		Description:    "Entradas",
		Mode:           model.SplitEqual,
		PaidByID:       tg.beto,
		Amount:         model.Money{Cents: 5000},
		ParticipantIDs: []int64{tg.beto, tg.carla},
	})
	require.NoError(t, err)
	require.Len(t, expense.Splits, 2)

	splits := splitMap(expense)
	assert.Equal(t, int64(2500), splits[tg.beto])
	assert.Equal(t, int64(2500), splits[tg.carla])
	_, hasAna := splits[tg.ana]
	assert.False(t, hasAna)

	t.Run("participant outside the group", func(t *testing.T) {
		_, err := tg.engine.CreateExpense(ctx, ExpenseParams{
			GroupID: tg.group.ID, Description: "x", Mode: model.SplitEqual,
			PaidByID: tg.ana, Amount: model.Money{Cents: 100},
			ParticipantIDs: []int64{9999},
		})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("duplicate participant", func(t *testing.T) {
		_, err := tg.engine.CreateExpense(ctx, ExpenseParams{
			GroupID: tg.group.ID, Description: "x", Mode: model.SplitEqual,
			PaidByID: tg.ana, Amount: model.Money{Cents: 100},
			ParticipantIDs: []int64{tg.ana, tg.ana, tg.beto},
		})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})
}

func TestCreateExpenseManualSplit(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		amounts []int64
		wantErr bool
	}{
		{name: "exact sum", amounts: []int64{5000, 3000, 2000}},
		{name: "one cent under is tolerated", amounts: []int64{5000, 3000, 1999}},
		{name: "one cent over is tolerated", amounts: []int64{5000, 3000, 2001}},
		{name: "two cents off is rejected", amounts: []int64{5000, 3000, 1998}, wantErr: true},
	}

	members := []int64{tg.ana, tg.beto, tg.carla}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := make([]model.SplitInput, len(tt.amounts))
			for i, cents := range tt.amounts {
				splits[i] = model.SplitInput{MemberID: members[i], Amount: model.Money{Cents: cents}}
			}
			_, err := tg.engine.CreateExpense(ctx, ExpenseParams{
				GroupID: tg.group.ID, Description: "Compras", Mode: model.SplitManual,
				PaidByID: tg.ana, Amount: model.Money{Cents: 10000},
				ManualSplits: splits,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidArgument)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("duplicate member rejected", func(t *testing.T) {
		_, err := tg.engine.CreateExpense(ctx, ExpenseParams{
			GroupID: tg.group.ID, Description: "x", Mode: model.SplitManual,
			PaidByID: tg.ana, Amount: model.Money{Cents: 200},
			ManualSplits: []model.SplitInput{
				{MemberID: tg.beto, Amount: model.Money{Cents: 100}},
				{MemberID: tg.beto, Amount: model.Money{Cents: 100}},
			},
		})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})

	t.Run("empty manual split rejected", func(t *testing.T) {
		_, err := tg.engine.CreateExpense(ctx, ExpenseParams{
			GroupID: tg.group.ID, Description: "x", Mode: model.SplitManual,
			PaidByID: tg.ana, Amount: model.Money{Cents: 200},
		})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})
}

func TestCreateExpenseFullReimburse(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()

	expense, err := tg.engine.CreateExpense(ctx, ExpenseParams{
		GroupID:     tg.group.ID,
		Description: "liquidación marzo",
		Mode:        model.SplitFullReimburse,
		PaidByID:    tg.ana,
		Amount:      model.Money{Cents: 9000},
	})
	require.NoError(t, err)
	require.Len(t, expense.Splits, 3)

	splits := splitMap(expense)
	assert.Zero(t, splits[tg.ana], "payer owes nothing in a reimbursement")
	assert.Equal(t, int64(4500), splits[tg.beto])
	assert.Equal(t, int64(4500), splits[tg.carla])
	assert.True(t, expense.IsSettlement())
}

func TestCreateExpensePayerMustBeMember(t *testing.T) {
	tg := setupGroup(t)

	_, err := tg.engine.CreateExpense(context.Background(), ExpenseParams{
		GroupID: tg.group.ID, Description: "x", Mode: model.SplitEqual,
		PaidByID: 9999, Amount: model.Money{Cents: 100},
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateExpenseReplacesSplits(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()

	expense, err := tg.engine.CreateExpense(ctx, ExpenseParams{
		GroupID: tg.group.ID, Description: "Cena", Mode: model.SplitEqual,
		PaidByID: tg.ana, Amount: model.Money{Cents: 9000},
	})
	require.NoError(t, err)

	updated, err := tg.engine.UpdateExpense(ctx, expense.ID, ExpenseParams{
		Description: "Cena y postre", Mode: model.SplitManual,
		PaidByID: tg.ana, Amount: model.Money{Cents: 12000},
		ManualSplits: []model.SplitInput{
			{MemberID: tg.ana, Amount: model.Money{Cents: 6000}},
			{MemberID: tg.beto, Amount: model.Money{Cents: 6000}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cena y postre", updated.Description)
	assert.Equal(t, expense.Date.Unix(), updated.Date.Unix(), "update keeps the original date")

	// The old three-way split is fully replaced.
	got, err := tg.engine.GroupDetail(ctx, tg.group.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, got.Expenses, 1)
	require.Len(t, got.Expenses[0].Splits, 2)

	t.Run("unknown expense", func(t *testing.T) {
		_, err := tg.engine.UpdateExpense(ctx, 9999, ExpenseParams{
			Description: "x", Mode: model.SplitEqual,
			PaidByID: tg.ana, Amount: model.Money{Cents: 100},
		})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestOutstandingBalance(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()

	create := func(description string, cents int64, mode model.SplitMode) {
		t.Helper()
		_, err := tg.engine.CreateExpense(ctx, ExpenseParams{
			GroupID: tg.group.ID, Description: description, Mode: mode,
			PaidByID: tg.ana, Amount: model.Money{Cents: cents},
		})
		require.NoError(t, err)
	}

	create("Nafta", 30000, model.SplitEqual)
	create("Hotel", 60000, model.SplitEqual)

	outstanding, err := tg.engine.OutstandingBalance(ctx, tg.group.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), outstanding.Cents)

	create("Liquidación parcial", 40000, model.SplitFullReimburse)

	outstanding, err = tg.engine.OutstandingBalance(ctx, tg.group.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), outstanding.Cents)

	t.Run("over-reimbursement clamps to zero", func(t *testing.T) {
		create("liquidación final", 99000, model.SplitFullReimburse)

		outstanding, err := tg.engine.OutstandingBalance(ctx, tg.group.ID, nil, nil)
		require.NoError(t, err)
		assert.True(t, outstanding.IsZero())
	})

	t.Run("marker is case-insensitive substring", func(t *testing.T) {
		e := model.GroupExpense{Description: "LIQUIDACIÓN de deudas"}
		assert.True(t, e.IsSettlement())
	})
}

func TestOutstandingBalancePeriod(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()

	march := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	_, err := tg.engine.CreateExpense(ctx, ExpenseParams{
		GroupID: tg.group.ID, Description: "Marzo", Mode: model.SplitEqual,
		PaidByID: tg.ana, Amount: model.Money{Cents: 10000}, Date: march,
	})
	require.NoError(t, err)
	_, err = tg.engine.CreateExpense(ctx, ExpenseParams{
		GroupID: tg.group.ID, Description: "Abril", Mode: model.SplitEqual,
		PaidByID: tg.ana, Amount: model.Money{Cents: 7000}, Date: april,
	})
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	outstanding, err := tg.engine.OutstandingBalance(ctx, tg.group.ID, &start, &end)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), outstanding.Cents)
}

func TestAddMemberByEmail(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()
	other, err := ledger.New(tg.engine.store).Register(ctx, "dani@example.com", "secret123", "Dani", "")
	require.NoError(t, err)

	member, err := tg.engine.AddMember(ctx, tg.group.ID, "Dani", "dani@example.com")
	require.NoError(t, err)
	assert.Equal(t, other.ID, member.UserID, "email links the member to the account")

	t.Run("unknown email fails", func(t *testing.T) {
		_, err := tg.engine.AddMember(ctx, tg.group.ID, "Nadie", "nadie@example.com")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := tg.engine.AddMember(ctx, tg.group.ID, "", "")
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})
}

func TestDeleteGroup(t *testing.T) {
	tg := setupGroup(t)
	ctx := context.Background()

	_, err := tg.engine.CreateExpense(ctx, ExpenseParams{
		GroupID: tg.group.ID, Description: "Cena", Mode: model.SplitEqual,
		PaidByID: tg.ana, Amount: model.Money{Cents: 9000},
	})
	require.NoError(t, err)

	t.Run("non-owner is denied", func(t *testing.T) {
		err := tg.engine.DeleteGroup(ctx, tg.group.ID, tg.owner.ID+1)
		assert.ErrorIs(t, err, common.ErrPermissionDenied)

		// Group untouched.
		_, err = tg.engine.GroupDetail(ctx, tg.group.ID, nil, nil)
		assert.NoError(t, err)
	})

	t.Run("owner cascade", func(t *testing.T) {
		require.NoError(t, tg.engine.DeleteGroup(ctx, tg.group.ID, tg.owner.ID))

		_, err := tg.engine.GroupDetail(ctx, tg.group.ID, nil, nil)
		assert.ErrorIs(t, err, common.ErrNotFound)

		groups, err := tg.engine.ListGroups(ctx, tg.owner.ID)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}
