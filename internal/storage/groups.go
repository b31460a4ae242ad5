package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

// CreateGroupRow inserts the group row only. Seeding the owner as the first
// member happens in the settlement engine, inside the same unit of work.
func (s *queries) CreateGroupRow(ctx context.Context, group *model.Group) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if group == nil {
		return fmt.Errorf("%w: group", ErrNilParameter)
	}
	if err := validateString(group.Name, "group name"); err != nil {
		return err
	}
	if err := validateID(group.OwnerID, "ownerID"); err != nil {
		return err
	}

	icon := group.Icon
	if icon == "" {
		icon = "💸"
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO groups (owner_id, name, icon)
		VALUES (?, ?, ?)`,
		group.OwnerID, group.Name, icon)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	group.Icon = icon
	group.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get group id: %w", err)
	}
	return nil
}

// GetGroup returns the group row with its members. Expenses are loaded
// separately via ListGroupExpenses.
func (s *queries) GetGroup(ctx context.Context, id int64) (*model.Group, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "groupID"); err != nil {
		return nil, err
	}

	var g model.Group
	err := s.q.QueryRowContext(ctx, `
		SELECT id, owner_id, name, icon, created_at
		FROM groups WHERE id = ?`, id).
		Scan(&g.ID, &g.OwnerID, &g.Name, &g.Icon, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("group %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query group: %w", err)
	}

	g.Members, err = s.ListGroupMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGroups returns the groups owned by the user, newest first, each with
// its members.
func (s *queries) ListGroups(ctx context.Context, ownerID int64) ([]model.Group, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, owner_id, name, icon, created_at
		FROM groups WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Icon, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	for i := range groups {
		groups[i].Members, err = s.ListGroupMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// InsertGroupMember adds a member to a group. A zero UserID records a ghost
// participant tracked by name only.
func (s *queries) InsertGroupMember(ctx context.Context, member *model.GroupMember) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("%w: member", ErrNilParameter)
	}
	if err := validateID(member.GroupID, "groupID"); err != nil {
		return err
	}
	if err := validateString(member.Name, "member name"); err != nil {
		return err
	}

	userID := sql.NullInt64{Int64: member.UserID, Valid: member.UserID > 0}
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO group_members (group_id, name, user_id)
		VALUES (?, ?, ?)`,
		member.GroupID, member.Name, userID)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}

	member.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get member id: %w", err)
	}
	return nil
}

// ListGroupMembers returns the members of a group.
func (s *queries) ListGroupMembers(ctx context.Context, groupID int64) ([]model.GroupMember, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(groupID, "groupID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, group_id, name, user_id
		FROM group_members WHERE group_id = ? ORDER BY id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var members []model.GroupMember
	for rows.Next() {
		var m model.GroupMember
		var userID sql.NullInt64
		if err := rows.Scan(&m.ID, &m.GroupID, &m.Name, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		if userID.Valid {
			m.UserID = userID.Int64
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}
	return members, nil
}

// InsertGroupExpense persists an expense together with its splits.
func (s *queries) InsertGroupExpense(ctx context.Context, expense *model.GroupExpense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if err := validateID(expense.GroupID, "groupID"); err != nil {
		return err
	}
	if err := validateID(expense.PaidByID, "paidByID"); err != nil {
		return err
	}
	if err := validateString(expense.Description, "expense description"); err != nil {
		return err
	}

	date := expense.Date
	if date.IsZero() {
		date = time.Now().UTC()
		expense.Date = date
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO group_expenses (group_id, description, amount, paid_by_id, date)
		VALUES (?, ?, ?, ?, ?)`,
		expense.GroupID, expense.Description, expense.Amount.Cents, expense.PaidByID, date)
	if err != nil {
		return fmt.Errorf("failed to insert group expense: %w", err)
	}

	expense.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense id: %w", err)
	}

	return s.InsertExpenseSplits(ctx, expense.ID, expense.Splits)
}

// GetGroupExpense returns an expense with its splits.
func (s *queries) GetGroupExpense(ctx context.Context, id int64) (*model.GroupExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "expenseID"); err != nil {
		return nil, err
	}

	var e model.GroupExpense
	err := s.q.QueryRowContext(ctx, `
		SELECT id, group_id, description, amount, paid_by_id, date, created_at
		FROM group_expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount.Cents, &e.PaidByID, &e.Date, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("group expense %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query group expense: %w", err)
	}

	e.Splits, err = s.listSplits(ctx, id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *queries) listSplits(ctx context.Context, expenseID int64) ([]model.ExpenseSplit, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, expense_id, member_id, amount
		FROM expense_splits WHERE expense_id = ? ORDER BY id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var splits []model.ExpenseSplit
	for rows.Next() {
		var sp model.ExpenseSplit
		if err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.MemberID, &sp.Amount.Cents); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating splits: %w", err)
	}
	return splits, nil
}

// UpdateGroupExpenseRow rewrites the expense's own fields. Splits are
// replaced separately inside the same unit of work.
func (s *queries) UpdateGroupExpenseRow(ctx context.Context, expense *model.GroupExpense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if err := validateID(expense.ID, "expenseID"); err != nil {
		return err
	}
	if err := validateID(expense.PaidByID, "paidByID"); err != nil {
		return err
	}
	if err := validateString(expense.Description, "expense description"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE group_expenses
		SET description = ?, amount = ?, paid_by_id = ?
		WHERE id = ?`,
		expense.Description, expense.Amount.Cents, expense.PaidByID, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to update group expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("group expense %d", expense.ID)
	}
	return nil
}

// ListGroupExpenses returns a group's expenses with their splits, newest
// first. Start and end bound the expense dates when provided.
func (s *queries) ListGroupExpenses(ctx context.Context, groupID int64, start, end *time.Time) ([]model.GroupExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(groupID, "groupID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, group_id, description, amount, paid_by_id, date, created_at
		FROM group_expenses WHERE group_id = ?`
	args := []any{groupID}
	if start != nil {
		query += ` AND date >= ?`
		args = append(args, *start)
	}
	if end != nil {
		query += ` AND date <= ?`
		args = append(args, *end)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query group expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.GroupExpense
	for rows.Next() {
		var e model.GroupExpense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount.Cents,
			&e.PaidByID, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group expenses: %w", err)
	}

	for i := range expenses {
		expenses[i].Splits, err = s.listSplits(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// InsertExpenseSplits persists a split set for an expense.
func (s *queries) InsertExpenseSplits(ctx context.Context, expenseID int64, splits []model.ExpenseSplit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(expenseID, "expenseID"); err != nil {
		return err
	}

	for i := range splits {
		result, err := s.q.ExecContext(ctx, `
			INSERT INTO expense_splits (expense_id, member_id, amount)
			VALUES (?, ?, ?)`,
			expenseID, splits[i].MemberID, splits[i].Amount.Cents)
		if err != nil {
			return fmt.Errorf("failed to insert split for member %d: %w", splits[i].MemberID, err)
		}
		splits[i].ExpenseID = expenseID
		splits[i].ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get split id: %w", err)
		}
	}
	return nil
}

// DeleteSplitsForExpense removes every split of one expense.
func (s *queries) DeleteSplitsForExpense(ctx context.Context, expenseID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(expenseID, "expenseID"); err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = ?`, expenseID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	return nil
}

// DeleteSplitsByGroup removes the splits of all the group's expenses.
func (s *queries) DeleteSplitsByGroup(ctx context.Context, groupID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(groupID, "groupID"); err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, `
		DELETE FROM expense_splits
		WHERE expense_id IN (SELECT id FROM group_expenses WHERE group_id = ?)`, groupID); err != nil {
		return fmt.Errorf("failed to delete group splits: %w", err)
	}
	return nil
}

// DeleteExpensesByGroup removes all the group's expenses.
func (s *queries) DeleteExpensesByGroup(ctx context.Context, groupID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(groupID, "groupID"); err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM group_expenses WHERE group_id = ?`, groupID); err != nil {
		return fmt.Errorf("failed to delete group expenses: %w", err)
	}
	return nil
}

// DeleteMembersByGroup removes all the group's members.
func (s *queries) DeleteMembersByGroup(ctx context.Context, groupID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(groupID, "groupID"); err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, groupID); err != nil {
		return fmt.Errorf("failed to delete group members: %w", err)
	}
	return nil
}

// DeleteGroupRow removes the group row itself.
func (s *queries) DeleteGroupRow(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "groupID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("group %d", id)
	}
	return nil
}
