package server

import (
	"net/http"
	"time"

	"github.com/centavoapp/centavo/internal/model"
)

type budgetRequest struct {
	CategoryID int64   `json:"categoryId"`
	Limit      float64 `json:"limit"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var periodStart, periodEnd time.Time
	if start != nil {
		periodStart = *start
	}
	if end != nil {
		periodEnd = *end
	}

	progress, err := s.budget.ListProgress(r.Context(), userID(r), periodStart, periodEnd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]budgetDTO, 0, len(progress))
	for _, p := range progress {
		dtos = append(dtos, budgetDTO{
			ID:           p.BudgetID,
			CategoryID:   p.CategoryID,
			CategoryName: p.CategoryName,
			CategoryIcon: p.CategoryIcon,
			Limit:        p.Limit.Float64(),
			Spent:        p.Spent.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := model.MoneyFromFloat(req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.budget.CreateBudget(r.Context(), &model.Budget{
		UserID:     userID(r),
		CategoryID: req.CategoryID,
		Limit:      limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, budgetDTO{
		ID:         created.ID,
		CategoryID: created.CategoryID,
		Limit:      created.Limit.Float64(),
	})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := model.MoneyFromFloat(req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget := &model.Budget{
		ID:         id,
		UserID:     userID(r),
		CategoryID: req.CategoryID,
		Limit:      limit,
	}
	if err := s.budget.UpdateBudget(r.Context(), budget); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetDTO{
		ID:         budget.ID,
		CategoryID: budget.CategoryID,
		Limit:      budget.Limit.Float64(),
	})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.budget.DeleteBudget(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
