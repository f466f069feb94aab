package domain

import (
	"errors"
	"strings"
)

const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

var (
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenNotYetValid      = errors.New("token is not yet valid")
	ErrTokenInvalidSubject   = errors.New("token has invalid subject")
	ErrTokenIssuerNotAllowed = errors.New("token issuer not allowed")
	ErrTokenInvalidSignature = errors.New("token has invalid signature")
	ErrTokenMalformed        = errors.New("token is malformed")
)

// UserClaims is the caller identity read from an access token. Its JSON form
// is what backends receive in the X-User header.
type UserClaims struct {
	Subject int64  `json:"sub"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

func NewUserClaims(subject int64, email, role string) (*UserClaims, error) {
	if subject <= 0 {
		return nil, ErrTokenInvalidSubject
	}
	return &UserClaims{Subject: subject, Email: email, Role: NormalizeRole(role)}, nil
}

// NormalizeRole upper-cases role names, so "teacher" and "TEACHER" match.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

func (c *UserClaims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == NormalizeRole(r) {
			return true
		}
	}
	return false
}
