package model

import "time"

// User is an account in the identity provider. Vault entries reference users
// only through the opaque OwnerID.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the verified caller identity resolved from credentials or a
// bearer token. It is treated as an opaque comparable value by the vault
// lifecycle engine.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
