package server

import (
	"net/http"
	"time"

	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/model"
	"github.com/centavoapp/centavo/internal/settle"
)

type groupRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.settle.ListGroups(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := make([]groupDTO, 0, len(groups))
	for i := range groups {
		dtos = append(dtos, toGroupDTO(&groups[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == "" {
		writeError(w, r, common.InvalidArgumentf("group name is required"))
		return
	}

	group, err := s.settle.CreateGroup(r.Context(), userID(r), req.Name, req.Icon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupDTO(group))
}

type groupDetailDTO struct {
	groupDTO
	Outstanding float64 `json:"outstanding"`
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := queryPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	group, err := s.settle.GroupDetail(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	outstanding, err := s.settle.OutstandingBalance(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, groupDetailDTO{
		groupDTO:    toGroupDTO(group),
		Outstanding: outstanding.Float64(),
	})
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.settle.DeleteGroup(r.Context(), id, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type memberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	member, err := s.settle.AddMember(r.Context(), id, req.Name, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberDTO(member))
}

type expenseRequest struct {
	Description    string     `json:"description"`
	Mode           string     `json:"mode"`
	PaidByID       int64      `json:"paidById"`
	Amount         float64    `json:"amount"`
	Date           string     `json:"date"`
	ParticipantIDs []int64    `json:"participantIds"`
	ManualSplits   []splitDTO `json:"manualSplits"`
}

func (req *expenseRequest) toParams(groupID int64) (settle.ExpenseParams, error) {
	amount, err := model.MoneyFromFloat(req.Amount)
	if err != nil {
		return settle.ExpenseParams{}, err
	}

	var date time.Time
	if req.Date != "" {
		date, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			date, err = time.Parse("2006-01-02", req.Date)
		}
		if err != nil {
			return settle.ExpenseParams{}, common.InvalidArgumentf("invalid date %q", req.Date)
		}
	}

	splits := make([]model.SplitInput, 0, len(req.ManualSplits))
	for _, s := range req.ManualSplits {
		splitAmount, err := model.MoneyFromFloat(s.Amount)
		if err != nil {
			return settle.ExpenseParams{}, err
		}
		splits = append(splits, model.SplitInput{MemberID: s.MemberID, Amount: splitAmount})
	}

	return settle.ExpenseParams{
		GroupID:        groupID,
		Description:    req.Description,
		Mode:           model.SplitMode(req.Mode),
		PaidByID:       req.PaidByID,
		Amount:         amount,
		Date:           date,
		ParticipantIDs: req.ParticipantIDs,
		ManualSplits:   splits,
	}, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	params, err := req.toParams(groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.settle.CreateExpense(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenseID, err := pathID(r, "expenseID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	params, err := req.toParams(groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.settle.UpdateExpense(r.Context(), expenseID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseDTO(expense))
}
