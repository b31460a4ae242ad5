package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/centavoapp/centavo/internal/model"
)

// CreateWallet creates a wallet. The supplied balance is an authoritative
// snapshot, not a delta.
func (s *Service) CreateWallet(ctx context.Context, wallet *model.Wallet) (*model.Wallet, error) {
	if wallet.Kind == "" {
		wallet.Kind = model.WalletDebit
	}
	if err := s.store.CreateWallet(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// GetWallet returns one wallet.
func (s *Service) GetWallet(ctx context.Context, id int64) (*model.Wallet, error) {
	return s.store.GetWallet(ctx, id)
}

// ListWallets returns the user's wallets.
func (s *Service) ListWallets(ctx context.Context, userID int64) ([]model.Wallet, error) {
	return s.store.ListWallets(ctx, userID)
}

// UpdateWallet rewrites a wallet, balance snapshot included. This is the
// wallet-edit reset path, the one mutation of balance that bypasses journal
// deltas.
func (s *Service) UpdateWallet(ctx context.Context, wallet *model.Wallet) error {
	return s.store.UpdateWallet(ctx, wallet)
}

// DeleteWallet removes a wallet together with all of its journal entries, in
// one unit of work.
func (s *Service) DeleteWallet(ctx context.Context, id int64) error {
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

	if _, err := tx.GetWallet(ctx, id); err != nil {
		return err
	}
	if err := tx.DeleteTransactionsByWallet(ctx, id); err != nil {
		return err
	}
	if err := tx.DeleteWalletRow(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit wallet delete: %w", err)
	}
	committed = true

	slog.Debug("deleted wallet", "wallet_id", id)
	return nil
}
