package domain

import (
	"context"
	"time"
)

// Known user roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           int       `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ListEmails returns every user's email, for notification mail fan-out.
	ListEmails(ctx context.Context) ([]string, error)
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier validates a token and returns the user id and role.
type TokenVerifier interface {
	Verify(token string) (userID int, role string, err error)
}

// AuthService resolves credentials to a signed token.
type AuthService interface {
	// Login returns a token or ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
