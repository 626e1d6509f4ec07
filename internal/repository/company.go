package repository

import (
	"context"

	"github.com/ErlanBelekov/companydesk/internal/domain"
)

// CompanyRepository scopes every query to the owning user's email.
type CompanyRepository interface {
	ListForUser(ctx context.Context, email string) ([]*domain.Company, error)
	FindForUser(ctx context.Context, email, siret string) (*domain.Company, error)
	Create(ctx context.Context, email string, c *domain.Company) (*domain.Company, error)
	Update(ctx context.Context, email string, c *domain.Company) (*domain.Company, error)
	Delete(ctx context.Context, email, siret string) error
}
