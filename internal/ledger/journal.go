// Package ledger implements the wallet ledger and transaction journal: every
// journal mutation is paired with the matching wallet balance delta inside
// one storage unit of work.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/service"
)

// DefaultDescription is recorded when a transaction arrives without one.
const DefaultDescription = "Sin descripción"

// Service owns wallets, the transaction journal and the category guard.
type Service struct {
	store service.Storage
}

// New creates a ledger service backed by the given storage.
func New(store service.Storage) *Service {
	return &Service{store: store}
}

// TransactionParams carries the caller-supplied fields for a journal write.
type TransactionParams struct {
	Date        time.Time
	Description string
	Type        model.TransactionType
	UserID      int64
	WalletID    int64
	CategoryID  int64 // 0 means uncategorized
	Amount      model.Money
}

func (p *TransactionParams) validate() error {
	if !p.Type.Valid() {
		return common.InvalidArgumentf("transaction type %q", p.Type)
	}
	if !p.Amount.IsPositive() {
		return common.InvalidArgumentf("amount must be positive, got %s", p.Amount)
	}
	return nil
}

// CreateTransaction validates the wallet, persists the journal entry and
// applies the signed balance delta, all in one unit of work. Repeated
// identical entries are accepted; the journal performs no duplicate
// detection.
func (s *Service) CreateTransaction(ctx context.Context, p TransactionParams) (*model.Transaction, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		UserID:      p.UserID,
		WalletID:    p.WalletID,
		CategoryID:  p.CategoryID,
		Type:        p.Type,
		Amount:      p.Amount,
		Description: p.Description,
		Date:        p.Date,
	}
	if txn.Description == "" {
		txn.Description = DefaultDescription
	}
	if txn.Date.IsZero() {
		txn.Date = time.Now().UTC()
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.GetWallet(ctx, p.WalletID); err != nil {
		return nil, err
	}
	if err := tx.InsertTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if _, err := tx.ApplyWalletDelta(ctx, p.WalletID, txn.SignedAmount()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction create: %w", err)
	}
	committed = true

	slog.Debug("created transaction",
		"transaction_id", txn.ID,
		"wallet_id", txn.WalletID,
		"type", txn.Type,
		"amount", txn.Amount)
	return txn, nil
}

// UpdateTransaction reverses the old entry's effect on its wallet, rewrites
// the entry and applies the new effect on the (possibly different) wallet.
// The three steps share one unit of work; a failure in any of them leaves
// every balance untouched.
func (s *Service) UpdateTransaction(ctx context.Context, id int64, p TransactionParams) (*model.Transaction, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	old, err := tx.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ApplyWalletDelta(ctx, old.WalletID, old.SignedAmount().Neg()); err != nil {
		return nil, err
	}

	if _, err := tx.GetWallet(ctx, p.WalletID); err != nil {
		return nil, err
	}

	updated := &model.Transaction{
		ID:          old.ID,
		UserID:      old.UserID,
		WalletID:    p.WalletID,
		CategoryID:  p.CategoryID,
		Type:        p.Type,
		Amount:      p.Amount,
		Description: p.Description,
		Date:        old.Date,
	}
	if updated.Description == "" {
		updated.Description = DefaultDescription
	}
	if err := tx.UpdateTransactionRow(ctx, updated); err != nil {
		return nil, err
	}

	if _, err := tx.ApplyWalletDelta(ctx, updated.WalletID, updated.SignedAmount()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction update: %w", err)
	}
	committed = true

	slog.Debug("updated transaction", "transaction_id", id)
	return updated, nil
}

// DeleteTransaction reverses the entry's effect on its wallet and removes the
// record, atomically.
func (s *Service) DeleteTransaction(ctx context.Context, id int64) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	txn, err := tx.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ApplyWalletDelta(ctx, txn.WalletID, txn.SignedAmount().Neg()); err != nil {
		return err
	}
	if err := tx.DeleteTransactionRow(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction delete: %w", err)
	}
	committed = true

	slog.Debug("deleted transaction", "transaction_id", id)
	return nil
}

// GetTransaction returns one journal entry.
func (s *Service) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListTransactions returns one page of the user's journal, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID int64, filter service.TransactionFilter) (*service.TransactionPage, error) {
	return s.store.ListTransactions(ctx, userID, filter)
}
