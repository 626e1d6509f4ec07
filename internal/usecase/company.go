package usecase

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/repository"
)

type CompanyRegistry interface {
	CompanyBySIRET(ctx context.Context, siret string) (*domain.Company, error)
}

type CompanyUsecase struct {
	repo     repository.CompanyRepository
	registry CompanyRegistry
}

func NewCompanyUsecase(repo repository.CompanyRepository, registry CompanyRegistry) *CompanyUsecase {
	return &CompanyUsecase{repo: repo, registry: registry}
}

// CompanyInput carries already-validated fields.
type CompanyInput struct {
	SIRET   string
	SIREN   string
	Name    string
	Address string
	TVA     string
}

func (u *CompanyUsecase) List(ctx context.Context, email string) ([]*domain.Company, error) {
	companies, err := u.repo.ListForUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// Lookup asks the public registry; nothing is stored.
func (u *CompanyUsecase) Lookup(ctx context.Context, siret string) (*domain.Company, error) {
	c, err := u.registry.CompanyBySIRET(ctx, siret)
	if err != nil {
		return nil, fmt.Errorf("registry lookup: %w", err)
	}
	return c, nil
}

func (u *CompanyUsecase) Create(ctx context.Context, email string, in CompanyInput) (*domain.Company, error) {
	created, err := u.repo.Create(ctx, email, &domain.Company{
		SIRET:   in.SIRET,
		SIREN:   in.SIREN,
		Name:    in.Name,
		Address: in.Address,
		TVA:     in.TVA,
	})
	if err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return created, nil
}

// Update rewrites name, address and tva. modified is false when nothing
// differed from the stored company, in which case no write happens.
func (u *CompanyUsecase) Update(ctx context.Context, email string, in CompanyInput) (c *domain.Company, modified bool, err error) {
	current, err := u.repo.FindForUser(ctx, email, in.SIRET)
	if err != nil {
		return nil, false, fmt.Errorf("find company: %w", err)
	}

	if current.Name == in.Name && current.Address == in.Address && current.TVA == in.TVA {
		return current, false, nil
	}

	updated, err := u.repo.Update(ctx, email, &domain.Company{
		SIRET:   in.SIRET,
		Name:    in.Name,
		Address: in.Address,
		TVA:     in.TVA,
	})
	if err != nil {
		return nil, false, fmt.Errorf("update company: %w", err)
	}
	return updated, true, nil
}

func (u *CompanyUsecase) Delete(ctx context.Context, email, siret string) error {
	if err := u.repo.Delete(ctx, email, siret); err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	return nil
}
