// Package storage provides the SQLite persistence layer for centavo.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/centavoapp/centavo/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidID         = errors.New("id must be positive")
	ErrInvalidDateRange  = errors.New("start date must be before end date")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidWalletKind = errors.New("invalid wallet kind")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateTransaction checks the fields the schema requires.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if !txn.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, txn.Type)
	}
	if err := validateID(txn.UserID, "userID"); err != nil {
		return err
	}
	if err := validateID(txn.WalletID, "walletID"); err != nil {
		return err
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: transaction date", ErrNilParameter)
	}
	return nil
}

// validateWallet checks the fields the schema requires.
func validateWallet(wallet *model.Wallet) error {
	if wallet == nil {
		return fmt.Errorf("%w: wallet", ErrNilParameter)
	}
	if err := validateString(wallet.Name, "wallet name"); err != nil {
		return err
	}
	if err := validateString(wallet.Currency, "wallet currency"); err != nil {
		return err
	}
	if err := validateID(wallet.UserID, "userID"); err != nil {
		return err
	}
	if !wallet.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidWalletKind, wallet.Kind)
	}
	return nil
}
