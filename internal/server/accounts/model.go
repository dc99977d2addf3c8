package accounts

import "time"

// Account is an identity record. Email is unique at the storage layer; the
// password is stored only as an encoded argon2id hash. Accounts are created
// on registration and read on login; profile edits are out of scope.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
