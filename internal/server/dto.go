package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
)

// Money travels on the wire as a decimal number of major units. Parsing goes
// through model.MoneyFromFloat so the fixed-point invariant holds at the
// boundary.

type walletDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Currency    string  `json:"currency"`
	Bank        string  `json:"bank,omitempty"`
	Balance     float64 `json:"balance"`
	CreditLimit float64 `json:"creditLimit,omitempty"`
}

func toWalletDTO(w *model.Wallet) walletDTO {
	return walletDTO{
		ID:          w.ID,
		Name:        w.Name,
		Kind:        string(w.Kind),
		Currency:    w.Currency,
		Bank:        w.Bank,
		Balance:     w.Balance.Float64(),
		CreditLimit: w.CreditLimit.Float64(),
	}
}

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Icon string `json:"icon"`
}

func toCategoryDTO(c *model.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name, Type: string(c.Type), Icon: c.Icon}
}

type transactionDTO struct {
	ID           int64   `json:"id"`
	WalletID     int64   `json:"walletId"`
	CategoryID   int64   `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
}

func toTransactionDTO(t *model.Transaction) transactionDTO {
	return transactionDTO{
		ID:           t.ID,
		WalletID:     t.WalletID,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		Type:         string(t.Type),
		Amount:       t.Amount.Float64(),
		Description:  t.Description,
		Date:         t.Date.UTC().Format(time.RFC3339),
	}
}

type budgetDTO struct {
	ID           int64   `json:"id"`
	CategoryID   int64   `json:"categoryId"`
	CategoryName string  `json:"categoryName,omitempty"`
	CategoryIcon string  `json:"categoryIcon,omitempty"`
	Limit        float64 `json:"limit"`
	Spent        float64 `json:"spent"`
}

type memberDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID int64  `json:"userId,omitempty"`
}

func toMemberDTO(m *model.GroupMember) memberDTO {
	return memberDTO{ID: m.ID, Name: m.Name, UserID: m.UserID}
}

type splitDTO struct {
	MemberID int64   `json:"memberId"`
	Amount   float64 `json:"amount"`
}

type expenseDTO struct {
	ID           int64      `json:"id"`
	Description  string     `json:"description"`
	PaidByID     int64      `json:"paidById"`
	Amount       float64    `json:"amount"`
	Date         string     `json:"date"`
	IsSettlement bool       `json:"isSettlement"`
	Splits       []splitDTO `json:"splits"`
}

func toExpenseDTO(e *model.GroupExpense) expenseDTO {
	dto := expenseDTO{
		ID:           e.ID,
		Description:  e.Description,
		PaidByID:     e.PaidByID,
		Amount:       e.Amount.Float64(),
		Date:         e.Date.UTC().Format(time.RFC3339),
		IsSettlement: e.IsSettlement(),
		Splits:       make([]splitDTO, 0, len(e.Splits)),
	}
	for _, s := range e.Splits {
		dto.Splits = append(dto.Splits, splitDTO{MemberID: s.MemberID, Amount: s.Amount.Float64()})
	}
	return dto
}

type groupDTO struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Icon     string       `json:"icon"`
	OwnerID  int64        `json:"ownerId"`
	Members  []memberDTO  `json:"members"`
	Expenses []expenseDTO `json:"expenses,omitempty"`
}

func toGroupDTO(g *model.Group) groupDTO {
	dto := groupDTO{
		ID:      g.ID,
		Name:    g.Name,
		Icon:    g.Icon,
		OwnerID: g.OwnerID,
		Members: make([]memberDTO, 0, len(g.Members)),
	}
	for i := range g.Members {
		dto.Members = append(dto.Members, toMemberDTO(&g.Members[i]))
	}
	for i := range g.Expenses {
		dto.Expenses = append(dto.Expenses, toExpenseDTO(&g.Expenses[i]))
	}
	return dto
}

type userDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUserDTO(u *model.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}

// pathID parses the named path segment as a positive integer ID.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.InvalidArgumentf("invalid %s", name)
	}
	return id, nil
}

// queryPeriod parses optional from/to date bounds (YYYY-MM-DD). The upper
// bound is inclusive of its whole day.
func queryPeriod(r *http.Request) (start, end *time.Time, err error) {
	if v := r.URL.Query().Get("from"); v != "" {
		t, perr := time.Parse("2006-01-02", v)
		if perr != nil {
			return nil, nil, common.InvalidArgumentf("invalid from date %q", v)
		}
		start = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, perr := time.Parse("2006-01-02", v)
		if perr != nil {
			return nil, nil, common.InvalidArgumentf("invalid to date %q", v)
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &t
	}
	return start, end, nil
}

// queryYearMonth parses year/month query parameters, defaulting to the
// current calendar month.
func queryYearMonth(r *http.Request) (int, time.Month) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}
	return year, month
}
