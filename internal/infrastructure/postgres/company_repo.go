package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const companyColumns = `c.id, c.user_id, c.siret, COALESCE(c.siren, ''), COALESCE(c.name, ''),
	COALESCE(c.address, ''), COALESCE(c.tva, ''), c.created_at, c.updated_at`

type CompanyRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCompanyRepository(pool *pgxpool.Pool, logger *slog.Logger) *CompanyRepository {
	return &CompanyRepository{pool: pool, logger: logger.With("component", "company_repo")}
}

func (r *CompanyRepository) ListForUser(ctx context.Context, email string) ([]*domain.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies c
		JOIN users u ON u.id = c.user_id
		WHERE u.email = $1
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := []*domain.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

func (r *CompanyRepository) FindForUser(ctx context.Context, email, siret string) (*domain.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies c
		JOIN users u ON u.id = c.user_id
		WHERE u.email = $1 AND c.siret = $2`

	return scanCompany(r.pool.QueryRow(ctx, query, email, siret))
}

func (r *CompanyRepository) Create(ctx context.Context, email string, in *domain.Company) (*domain.Company, error) {
	query := `
		WITH owner AS (SELECT id FROM users WHERE email = $1)
		INSERT INTO companies AS c (user_id, siret, siren, name, address, tva)
		SELECT owner.id, $2, $3, $4, $5, $6 FROM owner
		RETURNING ` + companyColumns

	created, err := scanCompany(r.pool.QueryRow(ctx, query,
		email, in.SIRET, in.SIREN, in.Name, in.Address, in.TVA,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrCompanyExists
		}
		if errors.Is(err, domain.ErrCompanyNotFound) {
			// no owner row: the user was removed mid-session
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return created, nil
}

func (r *CompanyRepository) Update(ctx context.Context, email string, in *domain.Company) (*domain.Company, error) {
	query := `
		UPDATE companies AS c
		SET name = $3, address = $4, tva = $5, updated_at = NOW()
		FROM users u
		WHERE u.id = c.user_id AND u.email = $1 AND c.siret = $2
		RETURNING ` + companyColumns

	return scanCompany(r.pool.QueryRow(ctx, query, email, in.SIRET, in.Name, in.Address, in.TVA))
}

func (r *CompanyRepository) Delete(ctx context.Context, email, siret string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM companies c
		USING users u
		WHERE u.id = c.user_id AND u.email = $1 AND c.siret = $2`,
		email, siret,
	)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCompanyNotFound
	}
	r.logger.DebugContext(ctx, "company deleted", "siret", siret)
	return nil
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	err := row.Scan(
		&c.ID, &c.UserID, &c.SIRET, &c.SIREN, &c.Name,
		&c.Address, &c.TVA, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}
	return &c, nil
}
