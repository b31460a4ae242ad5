// Package settle implements the group settlement engine: shared-expense
// groups, per-member splits and the aggregate outstanding balance.
package settle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/service"
)

// Engine manages groups, members, shared expenses and their splits.
type Engine struct {
	store service.Storage
}

// New creates a settlement engine backed by the given storage.
func New(store service.Storage) *Engine {
	return &Engine{store: store}
}

// ExpenseParams carries the caller-supplied fields for creating or replacing
// a group expense.
type ExpenseParams struct {
	Date           time.Time
	Description    string
	Mode           model.SplitMode
	GroupID        int64
	PaidByID       int64
	Amount         model.Money
	ParticipantIDs []int64            // EQUAL: explicit participant set, empty means all members
	ManualSplits   []model.SplitInput // MANUAL only
}

func (p *ExpenseParams) validate() error {
	if !p.Mode.Valid() {
		return common.InvalidArgumentf("split mode %q", p.Mode)
	}
	if !p.Amount.IsPositive() {
		return common.InvalidArgumentf("amount must be positive, got %s", p.Amount)
	}
	if p.Description == "" {
		return common.InvalidArgumentf("description is required")
	}
	return nil
}

// CreateGroup creates a group with the owner as its first, linked member.
func (e *Engine) CreateGroup(ctx context.Context, ownerID int64, name, icon string) (*model.Group, error) {
	owner, err := e.store.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	group := &model.Group{
		OwnerID: ownerID,
		Name:    name,
		Icon:    icon,
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := tx.CreateGroupRow(ctx, group); err != nil {
		return nil, err
	}

	first := &model.GroupMember{
		GroupID: group.ID,
		Name:    owner.Name,
		UserID:  ownerID,
	}
	if err := tx.InsertGroupMember(ctx, first); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group create: %w", err)
	}
	committed = true

	group.Members = []model.GroupMember{*first}
	slog.Debug("created group", "group_id", group.ID, "owner_id", ownerID)
	return group, nil
}

// ListGroups returns the groups the user owns.
func (e *Engine) ListGroups(ctx context.Context, ownerID int64) ([]model.Group, error) {
	return e.store.ListGroups(ctx, ownerID)
}

// GroupDetail returns a group with its members and expenses. A non-nil
// period restricts the expenses to dates within it.
func (e *Engine) GroupDetail(ctx context.Context, groupID int64, start, end *time.Time) (*model.Group, error) {
	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group.Expenses, err = e.store.ListGroupExpenses(ctx, groupID, start, end)
	if err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember adds a participant to the group. With an email the member must
// resolve to a registered user and takes that profile's name; with a bare
// name a ghost member is recorded.
func (e *Engine) AddMember(ctx context.Context, groupID int64, name, email string) (*model.GroupMember, error) {
	if _, err := e.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	member := &model.GroupMember{GroupID: groupID, Name: name}
	if email != "" {
		user, err := e.store.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		member.Name = user.Name
		member.UserID = user.ID
	}
	if member.Name == "" {
		return nil, common.InvalidArgumentf("member needs a name or an email")
	}

	if err := e.store.InsertGroupMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// CreateExpense validates the split set for the chosen mode and persists the
// expense together with its splits in one unit of work.
func (e *Engine) CreateExpense(ctx context.Context, p ExpenseParams) (*model.GroupExpense, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.GetGroup(ctx, p.GroupID); err != nil {
		return nil, err
	}
	members, err := tx.ListGroupMembers(ctx, p.GroupID)
	if err != nil {
		return nil, err
	}

	splits, err := computeSplits(p, members)
	if err != nil {
		return nil, err
	}

	expense := &model.GroupExpense{
		GroupID:     p.GroupID,
		Description: p.Description,
		Amount:      p.Amount,
		PaidByID:    p.PaidByID,
		Date:        p.Date,
		Splits:      splits,
	}
	if err := tx.InsertGroupExpense(ctx, expense); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense create: %w", err)
	}
	committed = true

	slog.Debug("created group expense",
		"expense_id", expense.ID,
		"group_id", p.GroupID,
		"mode", p.Mode,
		"amount", p.Amount)
	return expense, nil
}

// UpdateExpense replaces an expense wholesale: all prior splits are
// discarded, a fresh set is computed for the new parameters, and the
// expense's own fields are rewritten, in one unit of work.
func (e *Engine) UpdateExpense(ctx context.Context, id int64, p ExpenseParams) (*model.GroupExpense, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	existing, err := tx.GetGroupExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	p.GroupID = existing.GroupID

	members, err := tx.ListGroupMembers(ctx, existing.GroupID)
	if err != nil {
		return nil, err
	}
	splits, err := computeSplits(p, members)
	if err != nil {
		return nil, err
	}

	if err := tx.DeleteSplitsForExpense(ctx, id); err != nil {
		return nil, err
	}

	updated := &model.GroupExpense{
		ID:          id,
		GroupID:     existing.GroupID,
		Description: p.Description,
		Amount:      p.Amount,
		PaidByID:    p.PaidByID,
		Date:        existing.Date,
		Splits:      splits,
	}
	if err := tx.UpdateGroupExpenseRow(ctx, updated); err != nil {
		return nil, err
	}
	if err := tx.InsertExpenseSplits(ctx, id, updated.Splits); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense update: %w", err)
	}
	committed = true

	slog.Debug("replaced group expense", "expense_id", id, "mode", p.Mode)
	return updated, nil
}

// DeleteGroup removes a group and everything it owns. Only the group's owner
// may do this. The cascade is orchestrated in dependency order inside one
// unit of work: splits, then expenses, then members, then the group.
func (e *Engine) DeleteGroup(ctx context.Context, groupID, callerID int64) error {
	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != callerID {
		return common.PermissionDeniedf("only the owner can delete group %d", groupID)
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := tx.DeleteSplitsByGroup(ctx, groupID); err != nil {
		return err
	}
	if err := tx.DeleteExpensesByGroup(ctx, groupID); err != nil {
		return err
	}
	if err := tx.DeleteMembersByGroup(ctx, groupID); err != nil {
		return err
	}
	if err := tx.DeleteGroupRow(ctx, groupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group delete: %w", err)
	}
	committed = true

	slog.Info("deleted group", "group_id", groupID)
	return nil
}

// OutstandingBalance returns how much of the group's spending is still
// unsettled within the period: the sum of regular expenses minus the sum of
// settlement entries, clamped at zero. This is a single aggregate figure for
// the whole group, not a per-member debt matrix.
func (e *Engine) OutstandingBalance(ctx context.Context, groupID int64, start, end *time.Time) (model.Money, error) {
	if _, err := e.store.GetGroup(ctx, groupID); err != nil {
		return model.Money{}, err
	}

	expenses, err := e.store.ListGroupExpenses(ctx, groupID, start, end)
	if err != nil {
		return model.Money{}, err
	}

	var total, reimbursed model.Money
	for i := range expenses {
		if expenses[i].IsSettlement() {
			reimbursed = reimbursed.Add(expenses[i].Amount)
		} else {
			total = total.Add(expenses[i].Amount)
		}
	}

	outstanding := total.Sub(reimbursed)
	if outstanding.Cents < 0 {
		outstanding = model.Money{}
	}
	return outstanding, nil
}
