package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the portal roles carried in access tokens.
type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleOwner         UserRole = "OWNER"
	RoleCoordinator   UserRole = "COORDINATOR"
	RoleSubcontractor UserRole = "SUBCONTRACTOR"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
