package user

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service implements signup and the two login paths (client and admin).
type Service struct {
	users Repository
}

// NewService creates a user Service backed by the given repository.
func NewService(users Repository) *Service {
	return &Service{users: users}
}

// SignupRequest holds the input for registering an account.
type SignupRequest struct {
	Username string
	Password string
	Phone    string
	IsAdmin  bool
}

// Signup registers a new account after checking both the username and the
// phone number are free.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if req.Username == "" || req.Password == "" || req.Phone == "" {
		return nil, errors.New("username, password, and phone are required")
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check username")
	}

	if _, err := s.users.GetByPhone(ctx, req.Phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check phone")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Phone:        req.Phone,
		PasswordHash: hash,
		IsAdmin:      req.IsAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Login authenticates a buyer by phone and password. Lookup failures and
// password mismatches collapse into one error so the response does not leak
// which part was wrong.
func (s *Service) Login(ctx context.Context, phone, password string) (*User, error) {
	if phone == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// AdminLogin authenticates like Login and additionally requires the admin
// flag.
func (s *Service) AdminLogin(ctx context.Context, phone, password string) (*User, error) {
	u, err := s.Login(ctx, phone, password)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin {
		return nil, ErrNotAdmin
	}
	return u, nil
}

// Delete removes a non-admin account. Admin accounts cannot be deleted
// through this path.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "get user")
	}
	if u.IsAdmin {
		return ErrCannotDeleteAdmin
	}
	return s.users.Delete(ctx, id)
}

// List returns all accounts for the admin panel.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}
