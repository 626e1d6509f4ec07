package repository

import (
	"context"

	"github.com/ErlanBelekov/companydesk/internal/domain"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, email, secret string) (*domain.User, error)
	Delete(ctx context.Context, email string) error
	List(ctx context.Context) ([]*domain.User, error)
	UpdateSecret(ctx context.Context, email, secret string) error
}
