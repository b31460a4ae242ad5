// Package server exposes the finance services over a JSON HTTP API. It sits
// behind a front proxy that handles session auth and forwards the user
// identity in a header.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/centavoapp/centavo/internal/advisor"
	"github.com/centavoapp/centavo/internal/budget"
	"github.com/centavoapp/centavo/internal/ledger"
	"github.com/centavoapp/centavo/internal/settle"
)

// Server routes API requests to the domain services.
type Server struct {
	httpServer *http.Server
	ledger     *ledger.Service
	budget     *budget.Tracker
	settle     *settle.Engine
	advisor    *advisor.Service
}

// New configures routes and returns a ready-to-run server.
func New(addr string, ledgerSvc *ledger.Service, tracker *budget.Tracker, engine *settle.Engine, advisorSvc *advisor.Service) *Server {
	s := &Server{
		ledger:  ledgerSvc,
		budget:  tracker,
		settle:  engine,
		advisor: advisorSvc,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/me", s.requireUser(s.handleMe))

	mux.HandleFunc("GET /api/wallets", s.requireUser(s.handleListWallets))
	mux.HandleFunc("POST /api/wallets", s.requireUser(s.handleCreateWallet))
	mux.HandleFunc("GET /api/wallets/{id}", s.requireUser(s.handleGetWallet))
	mux.HandleFunc("PUT /api/wallets/{id}", s.requireUser(s.handleUpdateWallet))
	mux.HandleFunc("DELETE /api/wallets/{id}", s.requireUser(s.handleDeleteWallet))

	mux.HandleFunc("GET /api/categories", s.requireUser(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.requireUser(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.requireUser(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/transactions", s.requireUser(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.requireUser(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.requireUser(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.requireUser(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.requireUser(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.requireUser(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.requireUser(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.requireUser(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/groups", s.requireUser(s.handleListGroups))
	mux.HandleFunc("POST /api/groups", s.requireUser(s.handleCreateGroup))
	mux.HandleFunc("GET /api/groups/{id}", s.requireUser(s.handleGetGroup))
	mux.HandleFunc("DELETE /api/groups/{id}", s.requireUser(s.handleDeleteGroup))
	mux.HandleFunc("POST /api/groups/{id}/members", s.requireUser(s.handleAddMember))
	mux.HandleFunc("POST /api/groups/{id}/expenses", s.requireUser(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/groups/{id}/expenses/{expenseID}", s.requireUser(s.handleUpdateExpense))

	mux.HandleFunc("GET /api/dashboard", s.requireUser(s.handleDashboard))
	mux.HandleFunc("POST /api/advisor/categorize", s.requireUser(s.handleCategorize))
	mux.HandleFunc("GET /api/advisor/advice", s.requireUser(s.handleAdvice))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           withLogging(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Run serves until the context is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

// Handler exposes the configured handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
