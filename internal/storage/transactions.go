package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/service"
)

// DefaultPageSize is the journal page size when the caller does not set one.
const DefaultPageSize = 10

func nullableCategory(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

// InsertTransaction persists a journal entry. The wallet balance is not
// touched here; callers pair this with ApplyWalletDelta inside one unit of
// work.
func (s *queries) InsertTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (user_id, wallet_id, category_id, type, amount, description, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.UserID, txn.WalletID, nullableCategory(txn.CategoryID),
		txn.Type, txn.Amount.Cents, txn.Description, txn.Date)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	txn.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction id: %w", err)
	}
	return nil
}

func scanTransaction(scan func(...any) error) (*model.Transaction, error) {
	var txn model.Transaction
	var categoryID sql.NullInt64
	var categoryName sql.NullString

	err := scan(&txn.ID, &txn.UserID, &txn.WalletID, &categoryID, &txn.Type,
		&txn.Amount.Cents, &txn.Description, &txn.Date, &txn.CreatedAt, &categoryName)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		txn.CategoryID = categoryID.Int64
	}
	if categoryName.Valid {
		txn.CategoryName = categoryName.String
	}
	return &txn, nil
}

const transactionColumns = `
	t.id, t.user_id, t.wallet_id, t.category_id, t.type,
	t.amount, t.description, t.date, t.created_at, c.name`

// GetTransaction returns the journal entry with the given id.
func (s *queries) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "transactionID"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ?`, id)

	txn, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("transaction %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// UpdateTransactionRow rewrites the mutable fields of a journal entry. The
// paired balance reversal and re-application happen in the same unit of work.
func (s *queries) UpdateTransactionRow(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateID(txn.ID, "transactionID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET wallet_id = ?, category_id = ?, type = ?, amount = ?, description = ?, date = ?
		WHERE id = ?`,
		txn.WalletID, nullableCategory(txn.CategoryID), txn.Type,
		txn.Amount.Cents, txn.Description, txn.Date, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("transaction %d", txn.ID)
	}
	return nil
}

// DeleteTransactionRow removes a journal entry.
func (s *queries) DeleteTransactionRow(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "transactionID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("transaction %d", id)
	}
	return nil
}

// ListTransactions returns one page of the user's journal, newest first.
// Search matches case-insensitively against the description or the category
// name; the type filter restricts to INCOME or EXPENSE.
func (s *queries) ListTransactions(ctx context.Context, userID int64, filter service.TransactionFilter) (*service.TransactionPage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	where := `t.user_id = ?`
	args := []any{userID}

	if search := strings.TrimSpace(filter.Search); search != "" {
		where += ` AND (LOWER(t.description) LIKE ? OR LOWER(c.name) LIKE ?)`
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}

	switch filter.Type {
	case "", "ALL":
	case string(model.TypeIncome), string(model.TypeExpense):
		where += ` AND t.type = ?`
		args = append(args, filter.Type)
	default:
		return nil, common.InvalidArgumentf("unknown type filter %q", filter.Type)
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE ` + where
	if err := s.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE ` + where + `
		ORDER BY t.date DESC, t.id DESC
		LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize

	slog.Debug("listed transactions",
		"user_id", userID,
		"page", page,
		"total", total)

	return &service.TransactionPage{
		Transactions: transactions,
		Total:        total,
		TotalPages:   totalPages,
		Page:         page,
	}, nil
}

// ListTransactionsByPeriod returns the user's journal entries with dates in
// [start, end], newest first.
func (s *queries) ListTransactionsByPeriod(ctx context.Context, userID int64, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %v is after %v", ErrInvalidDateRange, start, end)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.date >= ? AND t.date <= ?
		ORDER BY t.date DESC, t.id DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// SumExpenses totals the user's EXPENSE entries for one category within
// [start, end].
func (s *queries) SumExpenses(ctx context.Context, userID, categoryID int64, start, end time.Time) (model.Money, error) {
	if err := validateContext(ctx); err != nil {
		return model.Money{}, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return model.Money{}, err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return model.Money{}, err
	}
	if end.Before(start) {
		return model.Money{}, fmt.Errorf("%w: %v is after %v", ErrInvalidDateRange, start, end)
	}

	var spent model.Money
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = ? AND category_id = ? AND type = ? AND date >= ? AND date <= ?`,
		userID, categoryID, model.TypeExpense, start, end).
		Scan(&spent.Cents)
	if err != nil {
		return model.Money{}, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return spent, nil
}
