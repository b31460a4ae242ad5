package model

import "time"

// WalletKind distinguishes how a wallet is funded. The kind drives sign
// conventions in statement importers, never in the ledger itself.
type WalletKind string

const (
	// WalletDebit is a standard bank debit account.
	WalletDebit WalletKind = "DEBIT"
	// WalletCredit is a credit card account.
	WalletCredit WalletKind = "CREDIT"
	// WalletCash is physical cash.
	WalletCash WalletKind = "CASH"
	// WalletCrypto is a cryptocurrency holding.
	WalletCrypto WalletKind = "CRYPTO"
)

// Valid reports whether the kind is one of the known wallet kinds.
func (k WalletKind) Valid() bool {
	switch k {
	case WalletDebit, WalletCredit, WalletCash, WalletCrypto:
		return true
	}
	return false
}

// Wallet is a named store of money with a running balance. The balance is a
// cached derived value: only journal operations move it, and only the wallet
// create/update snapshot may reset it outright.
type Wallet struct {
	CreatedAt   time.Time
	Name        string
	Currency    string
	Bank        string
	Kind        WalletKind
	ID          int64
	UserID      int64
	Balance     Money
	CreditLimit Money // informational only
}
