package model

import (
	"strings"
	"time"
)

// SplitMode selects how a group expense is divided among members.
type SplitMode string

const (
	// SplitEqual divides the amount evenly among the participants.
	SplitEqual SplitMode = "EQUAL"
	// SplitManual uses caller-supplied per-member amounts.
	SplitManual SplitMode = "MANUAL"
	// SplitFullReimburse records a settlement payment to the payer: every
	// member except the payer owes an equal share, the payer's split is zero.
	SplitFullReimburse SplitMode = "FULL_REIMBURSE"
)

// Valid reports whether the mode is one of the known split modes.
func (m SplitMode) Valid() bool {
	return m == SplitEqual || m == SplitManual || m == SplitFullReimburse
}

// SettlementMarker is the description substring that flags a group expense as
// a reimbursement rather than a real expense. This mirrors how settlement
// entries have always been recorded: there is no structural flag, only the
// marker. A regular expense whose description happens to contain it will be
// counted as a settlement.
const SettlementMarker = "liquidación"

// Group is a shared-expense context: a set of members and the expenses they
// split among themselves.
type Group struct {
	CreatedAt time.Time
	Name      string
	Icon      string
	ID        int64
	OwnerID   int64
	Members   []GroupMember
	Expenses  []GroupExpense
}

// GroupMember is a participant in a group. UserID is non-zero only when the
// member corresponds to a registered account; name-only "ghost" members are
// tracked without one.
type GroupMember struct {
	Name    string
	ID      int64
	GroupID int64
	UserID  int64 // 0 for ghost members
}

// GroupExpense is a shared expense paid by one member and divided among the
// group via its splits. The splits of a persisted expense always sum to the
// expense amount.
type GroupExpense struct {
	Date        time.Time
	CreatedAt   time.Time
	Description string
	ID          int64
	GroupID     int64
	PaidByID    int64
	Amount      Money
	Splits      []ExpenseSplit
}

// IsSettlement reports whether this expense is a reimbursement entry,
// detected by the description marker convention.
func (e *GroupExpense) IsSettlement() bool {
	return strings.Contains(strings.ToLower(e.Description), SettlementMarker)
}

// ExpenseSplit is the portion of a group expense attributed to one member.
// A member has at most one split per expense.
type ExpenseSplit struct {
	ID        int64
	ExpenseID int64
	MemberID  int64
	Amount    Money
}

// SplitInput is a caller-supplied manual split share.
type SplitInput struct {
	MemberID int64
	Amount   Money
}
