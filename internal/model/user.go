// Package model defines the entities stored by the sync backend and the
// payloads accepted for them.
//
// JSON field names are snake_case; existing mobile clients already speak
// that shape. The `db` tags name the backing column.
package model

import "time"

// User is a registered account.
//
// PasswordHash holds the stored "salt:digest" credential and never leaves
// the server: it is tagged json:"-".
type User struct {
	ID           int64     `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	Name         string    `json:"name"       db:"name"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SignupInput is the body of POST /auth/signup.
type SignupInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SigninInput is the body of POST /auth/signin.
type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
