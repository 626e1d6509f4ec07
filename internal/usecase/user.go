package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/metrics"
	"github.com/ErlanBelekov/companydesk/internal/repository"
	"github.com/ErlanBelekov/companydesk/internal/validation"
)

const secretBytes = 32

// UserUsecase is the administrative side of user records. Every secret it
// writes invalidates credentials issued under the previous one.
type UserUsecase struct {
	users     repository.UserRepository
	validator *validation.Validator
}

func NewUserUsecase(users repository.UserRepository, validator *validation.Validator) *UserUsecase {
	return &UserUsecase{users: users, validator: validator}
}

func (u *UserUsecase) Add(ctx context.Context, email string) (*domain.User, error) {
	fields, err := u.validator.Validate(map[string]string{validation.FieldEmail: email}, validation.FieldEmail)
	if err != nil {
		return nil, err
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, fields[validation.FieldEmail], secret)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (u *UserUsecase) Remove(ctx context.Context, email string) error {
	if err := u.users.Delete(ctx, email); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (u *UserUsecase) List(ctx context.Context) ([]*domain.User, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ResetSecret rotates the user's secret, revoking every outstanding session.
func (u *UserUsecase) ResetSecret(ctx context.Context, email string) error {
	secret, err := newSecret()
	if err != nil {
		return err
	}
	if err := u.users.UpdateSecret(ctx, email, secret); err != nil {
		return fmt.Errorf("update secret: %w", err)
	}
	metrics.SecretRotationsTotal.Inc()
	return nil
}

func newSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
