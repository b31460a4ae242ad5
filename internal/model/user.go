package model

import "time"

// User is the root owner of wallets, transactions, categories, budgets and
// groups. Authentication is the gateway's concern; the core only needs the
// identity and profile name.
type User struct {
	CreatedAt    time.Time
	Email        string
	Name         string
	PasswordHash string
	ID           int64
}
