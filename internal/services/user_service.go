package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Adithyan773/kisan-mitra/internal/config"
	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/models"
)

// UserService owns registration and login. The password scheme is
// configurable: "plaintext" reproduces the original prototype's storage
// (a known defect kept deliberately, see config), "bcrypt" is the
// opt-in fix.
type UserService struct {
	store  core.Store
	scheme string
}

func NewUserService(store core.Store, scheme string) *UserService {
	return &UserService{store: store, scheme: scheme}
}

func (s *UserService) Register(ctx context.Context, u *models.User, password string) error {
	if u == nil || u.Name == "" || password == "" {
		return errors.New("invalid user payload")
	}

	stored := password
	if s.scheme == config.SchemeBcrypt {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		stored = string(hash)
	}
	u.Password = stored

	return s.store.CreateUser(ctx, u)
}

// Authenticate returns the user on success or ErrInvalidCredentials on
// any mismatch. Unknown names and wrong passwords are indistinguishable
// to the caller.
func (s *UserService) Authenticate(ctx context.Context, name, password string) (*models.User, error) {
	user, err := s.store.GetUserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, core.ErrInvalidCredentials
	}

	if s.scheme == config.SchemeBcrypt {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
			return nil, core.ErrInvalidCredentials
		}
	} else {
		if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
			return nil, core.ErrInvalidCredentials
		}
	}
	return user, nil
}
