package server

import (
	"net/http"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

type walletRequest struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Currency    string  `json:"currency"`
	Bank        string  `json:"bank"`
	Balance     float64 `json:"balance"`
	CreditLimit float64 `json:"creditLimit"`
}

func (req *walletRequest) toModel(userID int64) (*model.Wallet, error) {
	balance, err := model.MoneyFromFloat(req.Balance)
	if err != nil {
		return nil, err
	}
	creditLimit, err := model.MoneyFromFloat(req.CreditLimit)
	if err != nil {
		return nil, err
	}
	return &model.Wallet{
		UserID:      userID,
		Name:        req.Name,
		Kind:        model.WalletKind(req.Kind),
		Currency:    req.Currency,
		Bank:        req.Bank,
		Balance:     balance,
		CreditLimit: creditLimit,
	}, nil
}

// ownWallet loads the wallet and hides it behind NotFound when it belongs to
// someone else.
func (s *Server) ownWallet(r *http.Request, id int64) (*model.Wallet, error) {
	wallet, err := s.ledger.GetWallet(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != userID(r) {
		return nil, common.NotFoundf("wallet %d", id)
	}
	return wallet, nil
}

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.ledger.ListWallets(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := make([]walletDTO, 0, len(wallets))
	for i := range wallets {
		dtos = append(dtos, toWalletDTO(&wallets[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	wallet, err := req.toModel(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.ledger.CreateWallet(r.Context(), wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWalletDTO(created))
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	wallet, err := s.ownWallet(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletDTO(wallet))
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.ownWallet(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	wallet, err := req.toModel(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	wallet.ID = id
	if err := s.ledger.UpdateWallet(r.Context(), wallet); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletDTO(wallet))
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.ownWallet(r, id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteWallet(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
