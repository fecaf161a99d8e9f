// Package models — User domain modeli.
package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// User, kayıtlı bir kullanıcıyı temsil eder.
// PasswordHash json:"-" ile işaretli — API response'larına asla sızmaz.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  *string   `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest, kullanıcı kayıt isteği.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, RegisterRequest kontrolü.
func (r *RegisterRequest) Validate() error {
	nameLen := utf8.RuneCountInString(r.Username)
	if nameLen < 2 || nameLen > 32 {
		return fmt.Errorf("username must be between 2 and 32 characters")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest, giriş isteği.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse, başarılı register/login yanıtı.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}
