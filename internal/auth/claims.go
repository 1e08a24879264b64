package auth

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims are the JWT claims issued by Supabase auth, which the
// original TabKeep clients authenticate with.
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
