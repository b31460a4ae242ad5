package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/ledger"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/service"
)

type transactionRequest struct {
	WalletID    int64   `json:"walletId"`
	CategoryID  int64   `json:"categoryId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func (req *transactionRequest) toParams(userID int64) (ledger.TransactionParams, error) {
	amount, err := model.MoneyFromFloat(req.Amount)
	if err != nil {
		return ledger.TransactionParams{}, err
	}

	var date time.Time
	if req.Date != "" {
		date, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			date, err = time.Parse("2006-01-02", req.Date)
		}
		if err != nil {
			return ledger.TransactionParams{}, common.InvalidArgumentf("invalid date %q", req.Date)
		}
	}

	return ledger.TransactionParams{
		UserID:      userID,
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Type:        model.TransactionType(req.Type),
		Amount:      amount,
		Description: req.Description,
		Date:        date,
	}, nil
}

type transactionPageDTO struct {
	Transactions []transactionDTO `json:"transactions"`
	Total        int              `json:"total"`
	TotalPages   int              `json:"totalPages"`
	Page         int              `json:"page"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.TransactionFilter{
		Search: q.Get("search"),
		Type:   q.Get("type"),
	}
	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			filter.Page = p
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil {
			filter.PageSize = ps
		}
	}

	page, err := s.ledger.ListTransactions(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto := transactionPageDTO{
		Transactions: make([]transactionDTO, 0, len(page.Transactions)),
		Total:        page.Total,
		TotalPages:   page.TotalPages,
		Page:         page.Page,
	}
	for i := range page.Transactions {
		dto.Transactions = append(dto.Transactions, toTransactionDTO(&page.Transactions[i]))
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	params, err := req.toParams(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.ownWallet(r, params.WalletID); err != nil {
		writeError(w, r, err)
		return
	}

	txn, err := s.ledger.CreateTransaction(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(txn))
}

// ownTransaction hides other users' journal entries behind NotFound.
func (s *Server) ownTransaction(r *http.Request, id int64) (*model.Transaction, error) {
	txn, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID(r) {
		return nil, common.NotFoundf("transaction %d", id)
	}
	return txn, nil
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.ownTransaction(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	params, err := req.toParams(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.ownWallet(r, params.WalletID); err != nil {
		writeError(w, r, err)
		return
	}

	txn, err := s.ledger.UpdateTransaction(r.Context(), id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(txn))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.ownTransaction(r, id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
