package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

// CreateWallet inserts a wallet with its initial balance snapshot.
func (s *queries) CreateWallet(ctx context.Context, wallet *model.Wallet) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateWallet(wallet); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO wallets (user_id, name, currency, balance, kind, bank, credit_limit)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		wallet.UserID, wallet.Name, wallet.Currency, wallet.Balance.Cents,
		wallet.Kind, wallet.Bank, wallet.CreditLimit.Cents)
	if err != nil {
		return fmt.Errorf("failed to insert wallet: %w", err)
	}

	wallet.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get wallet id: %w", err)
	}
	return nil
}

// GetWallet returns the wallet with the given id.
func (s *queries) GetWallet(ctx context.Context, id int64) (*model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "walletID"); err != nil {
		return nil, err
	}

	var w model.Wallet
	err := s.q.QueryRowContext(ctx, `
		SELECT id, user_id, name, currency, balance, kind, bank, credit_limit, created_at
		FROM wallets WHERE id = ?`, id).
		Scan(&w.ID, &w.UserID, &w.Name, &w.Currency, &w.Balance.Cents,
			&w.Kind, &w.Bank, &w.CreditLimit.Cents, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("wallet %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet: %w", err)
	}
	return &w, nil
}

// ListWallets returns all wallets owned by the user, oldest first.
func (s *queries) ListWallets(ctx context.Context, userID int64) ([]model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, name, currency, balance, kind, bank, credit_limit, created_at
		FROM wallets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var wallets []model.Wallet
	for rows.Next() {
		var w model.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Currency, &w.Balance.Cents,
			&w.Kind, &w.Bank, &w.CreditLimit.Cents, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}
	return wallets, nil
}

// UpdateWallet rewrites the wallet row, including the balance snapshot. This
// is the one sanctioned way to set a balance outside of journal deltas.
func (s *queries) UpdateWallet(ctx context.Context, wallet *model.Wallet) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateWallet(wallet); err != nil {
		return err
	}
	if err := validateID(wallet.ID, "walletID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE wallets
		SET name = ?, currency = ?, balance = ?, kind = ?, bank = ?, credit_limit = ?
		WHERE id = ?`,
		wallet.Name, wallet.Currency, wallet.Balance.Cents, wallet.Kind,
		wallet.Bank, wallet.CreditLimit.Cents, wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("wallet %d", wallet.ID)
	}
	return nil
}

// DeleteWalletRow removes the wallet row only. Callers are responsible for
// removing the wallet's transactions first, inside the same unit of work.
func (s *queries) DeleteWalletRow(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "walletID"); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM wallets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("wallet %d", id)
	}
	return nil
}

// DeleteTransactionsByWallet removes every journal entry recorded against
// the wallet.
func (s *queries) DeleteTransactionsByWallet(ctx context.Context, walletID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(walletID, "walletID"); err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE wallet_id = ?`, walletID); err != nil {
		return fmt.Errorf("failed to delete wallet transactions: %w", err)
	}
	return nil
}

// ApplyWalletDelta adds a signed amount to the wallet's stored balance and
// returns the new balance. It is only ever called inside the same unit of
// work as the journal write that produced the delta.
func (s *queries) ApplyWalletDelta(ctx context.Context, walletID int64, delta model.Money) (model.Money, error) {
	if err := validateContext(ctx); err != nil {
		return model.Money{}, err
	}
	if err := validateID(walletID, "walletID"); err != nil {
		return model.Money{}, err
	}

	result, err := s.q.ExecContext(ctx,
		`UPDATE wallets SET balance = balance + ? WHERE id = ?`,
		delta.Cents, walletID)
	if err != nil {
		return model.Money{}, fmt.Errorf("failed to apply balance delta: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return model.Money{}, fmt.Errorf("failed to check delta result: %w", err)
	}
	if affected == 0 {
		return model.Money{}, common.NotFoundf("wallet %d", walletID)
	}

	var balance model.Money
	err = s.q.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE id = ?`, walletID).
		Scan(&balance.Cents)
	if err != nil {
		return model.Money{}, fmt.Errorf("failed to read new balance: %w", err)
	}

	slog.Debug("applied wallet delta",
		"wallet_id", walletID,
		"delta_cents", delta.Cents,
		"new_balance_cents", balance.Cents)
	return balance, nil
}
