package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, access token içine gömülen claim'ler.
// jwt.RegisteredClaims embed edilir — exp/iat standart alanları oradan gelir.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
