package models

import (
	"time"
)

// Account is the credential row kept in Postgres. It never leaves the server.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
}
