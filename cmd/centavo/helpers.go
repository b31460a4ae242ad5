package main

import (
	"context"
	"fmt"

	"github.com/centavoapp/centavo/internal/advisor"
	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/config"
	"github.com/centavoapp/centavo/internal/service"
	"github.com/centavoapp/centavo/internal/storage"
)

// initStorage opens the configured database and brings the schema current.
func initStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("could not open the database at %s", cfg.Database.Path), err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("could not bring the database schema up to date", err)
	}

	return store, nil
}

// initAdvisorClient builds the configured oracle client, or nil when no
// provider is set.
func initAdvisorClient(cfg *config.Config) (advisor.Client, error) {
	return advisor.NewClient(advisor.Config{
		Provider:    cfg.Advisor.Provider,
		APIKey:      cfg.Advisor.APIKey,
		Model:       cfg.Advisor.Model,
		Temperature: cfg.Advisor.Temperature,
	})
}
