// Package user holds buyer and admin accounts and the signup/login rules.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

// Account errors.
var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrPhoneTaken         = errors.New("phone number is already associated with an account")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAdmin           = errors.New("admin access required")
	ErrCannotDeleteAdmin  = errors.New("cannot delete an admin user")
)

// User is a registered account. Buyers log in by phone; admins additionally
// carry the IsAdmin flag.
type User struct {
	ID           string
	Username     string
	Phone        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Repository defines persistence operations for accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// CheckPassword compares a candidate password against the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
