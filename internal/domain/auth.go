package domain

import "github.com/dgrijalva/jwt-go"

// Claim is the JWT payload issued to authenticated administrators.
type Claim struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}
