package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

// Register creates a user account and provisions it in one unit of work: a
// cash wallet in the chosen currency and the default category set.
func (s *Service) Register(ctx context.Context, email, password, name, currency string) (*model.User, error) {
	if email == "" || password == "" || name == "" {
		return nil, common.InvalidArgumentf("email, password and name are required")
	}
	if currency == "" {
		currency = "ARS"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
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

	if err := tx.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	wallet := &model.Wallet{
		UserID:   user.ID,
		Name:     "Efectivo",
		Currency: currency,
		Kind:     model.WalletCash,
	}
	if err := tx.CreateWallet(ctx, wallet); err != nil {
		return nil, err
	}

	for _, cat := range model.DefaultCategories {
		c := cat
		c.UserID = user.ID
		if err := tx.CreateCategory(ctx, &c); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}
	committed = true

	slog.Info("registered user", "user_id", user.ID)
	return user, nil
}

// Authenticate verifies the credentials and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.PermissionDeniedf("invalid credentials")
	}
	return user, nil
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.store.GetUserByID(ctx, id)
}
