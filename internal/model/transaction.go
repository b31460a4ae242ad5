package model

import "time"

// TransactionType indicates the direction of a money movement.
type TransactionType string

const (
	// TypeIncome marks money entering a wallet.
	TypeIncome TransactionType = "INCOME"
	// TypeExpense marks money leaving a wallet.
	TypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether the type is one of the known directions.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single dated money movement against exactly one wallet.
// Amount is always a positive magnitude; the sign applied to the wallet
// balance is derived from Type.
type Transaction struct {
	Date         time.Time
	CreatedAt    time.Time
	Description  string
	CategoryName string // populated on reads via join, empty otherwise
	Type         TransactionType
	ID           int64
	UserID       int64
	WalletID     int64
	CategoryID   int64 // 0 means uncategorized
	Amount       Money
}

// SignedAmount returns the delta this transaction applies to its wallet:
// positive magnitude for income, negative for expense.
func (t *Transaction) SignedAmount() Money {
	if t.Type == TypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}
