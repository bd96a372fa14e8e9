package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens. StudentID is set
// for student accounts and binds them to their own report cards.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	StudentID *int     `json:"student_id,omitempty"`
	jwt.RegisteredClaims
}

// ReportCardKey identifies a report card within the registry.
type ReportCardKey struct {
	StudentID int
	Year      int
}
