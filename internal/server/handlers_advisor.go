package server

import (
	"net/http"
)

type chartSliceDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type dashboardDTO struct {
	Balance      float64          `json:"balance"`
	Income       float64          `json:"income"`
	Expense      float64          `json:"expense"`
	Wallets      []walletDTO      `json:"wallets"`
	Categories   []categoryDTO    `json:"categories"`
	Transactions []transactionDTO `json:"transactions"`
	Budgets      []budgetDTO      `json:"budgets"`
	ChartData    []chartSliceDTO  `json:"chartData"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, month := queryYearMonth(r)

	d, err := s.ledger.GetDashboard(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto := dashboardDTO{
		Balance:      d.Balance.Float64(),
		Income:       d.Income.Float64(),
		Expense:      d.Expense.Float64(),
		Wallets:      make([]walletDTO, 0, len(d.Wallets)),
		Categories:   make([]categoryDTO, 0, len(d.Categories)),
		Transactions: make([]transactionDTO, 0, len(d.Transactions)),
		Budgets:      make([]budgetDTO, 0, len(d.Budgets)),
		ChartData:    make([]chartSliceDTO, 0, len(d.ChartData)),
	}
	for i := range d.Wallets {
		dto.Wallets = append(dto.Wallets, toWalletDTO(&d.Wallets[i]))
	}
	for i := range d.Categories {
		dto.Categories = append(dto.Categories, toCategoryDTO(&d.Categories[i]))
	}
	for i := range d.Transactions {
		dto.Transactions = append(dto.Transactions, toTransactionDTO(&d.Transactions[i]))
	}
	for _, b := range d.Budgets {
		dto.Budgets = append(dto.Budgets, budgetDTO{
			ID:           b.Budget.ID,
			CategoryID:   b.Budget.CategoryID,
			CategoryName: b.CategoryName,
			CategoryIcon: b.CategoryIcon,
			Limit:        b.Budget.Limit.Float64(),
			Spent:        b.Spent.Float64(),
		})
	}
	for _, c := range d.ChartData {
		dto.ChartData = append(dto.ChartData, chartSliceDTO{Name: c.Name, Amount: c.Amount.Float64()})
	}

	writeJSON(w, http.StatusOK, dto)
}

type categorizeRequest struct {
	Descriptions []string `json:"descriptions"`
}

type categorizeResponse struct {
	CategoryIDs []int64 `json:"categoryIds"`
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ids, err := s.advisor.CategorizeDescriptions(r.Context(), userID(r), req.Descriptions)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, categorizeResponse{CategoryIDs: ids})
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	year, month := queryYearMonth(r)

	advice, err := s.advisor.MonthlyAdvice(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: advice})
}
